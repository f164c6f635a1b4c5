package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(&stubUserRepo{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing fields", RegisterInput{Username: "alice"}},
		{"bad username", RegisterInput{Username: "a!", Email: "a@example.com", Password: "Password123"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "Password123"}},
		{"weak password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.input)
			assertAppErrorCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := &stubUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email}, nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "taken@example.com", Password: "Password123",
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "new@example.com", Password: "Password123",
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *models.User
	repo := &stubUserRepo{
		createFn: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			created = user
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "Password123",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(1), user.ID)
	assert.NotEqual(t, "Password123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Password123")))
}

func TestAuthenticateSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, Password: string(hashed)}, nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Authenticate(context.Background(), LoginInput{Username: "alice", Password: "Password123"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username, Password: string(hashed)}, nil
		},
	}
	svc := NewUserService(repo)

	_, err = svc.Authenticate(context.Background(), LoginInput{Username: "alice", Password: "WrongPass1"})
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewUserService(&stubUserRepo{})

	_, err := svc.Authenticate(context.Background(), LoginInput{Username: "ghost", Password: "Password123"})
	assertAppErrorCode(t, err, "AUTHENTICATION_ERROR")
}
