// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"math"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort fields accepted by ListPostsParams.SortBy.
const (
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
	SortByLikes     = "likes"
)

// ListPostsParams captures the browse query: 1-indexed page, page size,
// optional case-insensitive search term and sort selection.
type ListPostsParams struct {
	Page          int
	PageSize      int
	Search        string
	SortBy        string
	SortOrder     string
	CurrentUserID uint
}

// PostRepository defines the interface for post aggregate data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, params ListPostsParams) ([]*models.Post, *models.Pagination, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	LikeCount(ctx context.Context, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			Preload("Comments", commentOrder).
			Preload("Comments.User").
			First(&post, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	// Anonymous reads share a cache entry; authenticated reads carry the
	// per-user liked flag and always hit the database.
	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, params ListPostsParams) ([]*models.Post, *models.Pagination, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	filtered := applySearch(r.db.WithContext(ctx).Model(&models.Post{}), params.Search)

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	var posts []*models.Post
	base := applySearch(r.applyPostDetails(r.db.WithContext(ctx), params.CurrentUserID), params.Search).
		Preload("User").
		Preload("Comments", commentOrder).
		Preload("Comments.User")
	err := base.
		Order(sortClause(params.SortBy, params.SortOrder)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	pagination := &models.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalPosts:   total,
		PostsPerPage: pageSize,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
	return posts, pagination, nil
}

// applySearch adds the case-insensitive substring filter over title OR content.
// An empty term matches everything.
func applySearch(db *gorm.DB, search string) *gorm.DB {
	term := strings.TrimSpace(search)
	if term == "" {
		return db
	}
	like := "%" + strings.ToLower(term) + "%"
	return db.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
}

// applyPostDetails adds subqueries computing the like count and the current
// user's liked flag in a single query. likes_count is a SELECT alias, so
// ORDER BY can reference it for the "likes" sort.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", currentUserID)
	}

	return db.Select(selectQuery + ", false AS liked")
}

// sortClause maps the API sort parameters onto ORDER BY columns. posts.id acts
// as a deterministic tiebreaker so pages never overlap under a fixed sort.
func sortClause(sortBy, sortOrder string) string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	switch sortBy {
	case SortByTitle:
		return "title " + dir + ", posts.id " + dir
	case SortByLikes:
		// likes sorts by the derived set size, not a stored column
		return "likes_count " + dir + ", posts.created_at DESC, posts.id DESC"
	default:
		return "posts.created_at " + dir + ", posts.id " + dir
	}
}

// commentOrder preserves append order on preloaded comment sequences.
func commentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at ASC, comments.id ASC")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Comments", "User").Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post record together with its owned comments and likes
// in a single transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Like inserts the (user, post) pair with ON CONFLICT DO NOTHING. The unique
// index plus the conflict clause keep the insert atomic under concurrent
// toggles from the same user; a read-then-write pair would not.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&models.Like{UserID: userID, PostID: postID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
