package seed

import (
	"fmt"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedPopulatesDatabase(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 3, NumPosts: 5}))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.Equal(t, int64(3), userCount)
	assert.Equal(t, int64(5), postCount)

	// Every seeded like is a distinct (user, post) pair.
	var likes []models.Like
	require.NoError(t, db.Find(&likes).Error)
	seen := make(map[string]bool, len(likes))
	for _, like := range likes {
		key := fmt.Sprintf("%d-%d", like.UserID, like.PostID)
		assert.False(t, seen[key], "duplicate like %s", key)
		seen[key] = true
	}
}

func TestNewUserOverrides(t *testing.T) {
	user := NewUser(func(u *models.User) {
		u.Username = "fixed_name"
	})
	assert.Equal(t, "fixed_name", user.Username)
	assert.NotEmpty(t, user.Email)
	assert.NotEmpty(t, user.Password)
	assert.NotEqual(t, "Password123", user.Password)
}

func TestNewPostBelongsToAuthor(t *testing.T) {
	author := &models.User{ID: 7}
	post := NewPost(author)
	assert.Equal(t, uint(7), post.UserID)
	assert.NotEmpty(t, post.Title)
	assert.NotEmpty(t, post.Content)
	assert.False(t, post.CreatedAt.IsZero())
}
