package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPostRepo implements repository.PostRepository with overridable behavior.
type stubPostRepo struct {
	createFn    func(ctx context.Context, post *models.Post) error
	getByIDFn   func(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	listFn      func(ctx context.Context, params repository.ListPostsParams) ([]*models.Post, *models.Pagination, error)
	updateFn    func(ctx context.Context, post *models.Post) error
	deleteFn    func(ctx context.Context, id uint) error
	isLikedFn   func(ctx context.Context, userID, postID uint) (bool, error)
	likeFn      func(ctx context.Context, userID, postID uint) error
	unlikeFn    func(ctx context.Context, userID, postID uint) error
	likeCountFn func(ctx context.Context, postID uint) (int64, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, post)
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return &models.Post{ID: id}, nil
	}
	return s.getByIDFn(ctx, id, currentUserID)
}

func (s *stubPostRepo) List(ctx context.Context, params repository.ListPostsParams) ([]*models.Post, *models.Pagination, error) {
	if s.listFn == nil {
		return nil, &models.Pagination{}, nil
	}
	return s.listFn(ctx, params)
}

func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, post)
}

func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

func (s *stubPostRepo) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if s.isLikedFn == nil {
		return false, nil
	}
	return s.isLikedFn(ctx, userID, postID)
}

func (s *stubPostRepo) Like(ctx context.Context, userID, postID uint) error {
	if s.likeFn == nil {
		return nil
	}
	return s.likeFn(ctx, userID, postID)
}

func (s *stubPostRepo) Unlike(ctx context.Context, userID, postID uint) error {
	if s.unlikeFn == nil {
		return nil
	}
	return s.unlikeFn(ctx, userID, postID)
}

func (s *stubPostRepo) LikeCount(ctx context.Context, postID uint) (int64, error) {
	if s.likeCountFn == nil {
		return 0, nil
	}
	return s.likeCountFn(ctx, postID)
}

// stubCommentRepo implements repository.CommentRepository.
type stubCommentRepo struct {
	createFn     func(ctx context.Context, comment *models.Comment) error
	listByPostFn func(ctx context.Context, postID uint) ([]*models.Comment, error)
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, comment)
}

func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if s.listByPostFn == nil {
		return nil, nil
	}
	return s.listByPostFn(ctx, postID)
}

// stubUserRepo implements repository.UserRepository.
type stubUserRepo struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}

// recordingStore records Remove calls and can simulate failures.
type recordingStore struct {
	removed []string
	err     error
}

func (r *recordingStore) Remove(ref string) error {
	r.removed = append(r.removed, ref)
	return r.err
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}
