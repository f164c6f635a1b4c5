// Package service implements the business rules on top of the repositories:
// input validation, authorship enforcement and attachment lifecycle.
package service

import (
	"context"
	"log/slog"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// AttachmentStore is the slice of the storage layer the post service needs:
// deleting files that are no longer referenced by a post.
type AttachmentStore interface {
	Remove(ref string) error
}

type PostService struct {
	postRepo    repository.PostRepository
	attachments AttachmentStore
}

type CreatePostInput struct {
	UserID    uint
	Title     string
	Content   string
	ImagePath string
}

type UpdatePostInput struct {
	UserID    uint
	PostID    uint
	Title     string
	Content   string
	ImagePath string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// ListPostsInput mirrors the browse query parameters.
type ListPostsInput struct {
	Page          int
	PageSize      int
	Search        string
	SortBy        string
	SortOrder     string
	CurrentUserID uint
}

func NewPostService(postRepo repository.PostRepository, attachments AttachmentStore) *PostService {
	return &PostService{
		postRepo:    postRepo,
		attachments: attachments,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post := &models.Post{
		Title:     title,
		Content:   content,
		ImagePath: in.ImagePath,
		UserID:    in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read for the denormalized author join.
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, *models.Pagination, error) {
	params := repository.ListPostsParams{
		Page:          in.Page,
		PageSize:      in.PageSize,
		Search:        in.Search,
		SortBy:        in.SortBy,
		SortOrder:     in.SortOrder,
		CurrentUserID: in.CurrentUserID,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 10
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}
	switch params.SortBy {
	case repository.SortByCreatedAt, repository.SortByTitle, repository.SortByLikes:
	default:
		params.SortBy = repository.SortByCreatedAt
	}
	if !strings.EqualFold(params.SortOrder, "asc") {
		params.SortOrder = "desc"
	}

	posts, pagination, err := s.postRepo.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, pagination, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	oldImage := post.ImagePath
	if t := strings.TrimSpace(in.Title); t != "" {
		if len(t) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = t
	}
	if c := strings.TrimSpace(in.Content); c != "" {
		if len(c) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = c
	}
	if in.ImagePath != "" {
		post.ImagePath = in.ImagePath
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	// Remove the replaced image only after the new reference is persisted, so
	// a failed write never orphans the sole copy.
	if oldImage != "" && post.ImagePath != oldImage {
		s.removeAttachment(ctx, oldImage)
	}

	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}

	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	if post.ImagePath != "" {
		s.removeAttachment(ctx, post.ImagePath)
	}
	return nil
}

// ToggleLike flips the caller's membership in the post's likes set and returns
// the resulting count and state. Any authenticated user may like any post,
// including their own.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (int64, bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return 0, false, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return 0, false, err
	}

	if liked {
		err = s.postRepo.Unlike(ctx, userID, postID)
	} else {
		err = s.postRepo.Like(ctx, userID, postID)
	}
	if err != nil {
		return 0, false, err
	}

	count, err := s.postRepo.LikeCount(ctx, postID)
	if err != nil {
		return 0, false, err
	}
	return count, !liked, nil
}

// removeAttachment is best-effort cleanup: a failed file delete must not mask
// the already-committed primary operation.
func (s *PostService) removeAttachment(ctx context.Context, ref string) {
	if s.attachments == nil {
		return
	}
	if err := s.attachments.Remove(ref); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove post attachment",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}
