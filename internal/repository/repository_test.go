package repository

import (
	"context"
	"fmt"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled :memory: connection is a different database; pin to one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:   title,
		Content: "content of " + title,
		UserID:  userID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func seedPosts(t *testing.T, db *gorm.DB, userID uint, count int) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, createTestPost(t, db, userID, fmt.Sprintf("post %02d", i)))
	}
	return posts
}

func listAllIDs(t *testing.T, repo PostRepository, params ListPostsParams) []uint {
	t.Helper()
	var ids []uint
	for page := 1; ; page++ {
		params.Page = page
		posts, pagination, err := repo.List(context.Background(), params)
		require.NoError(t, err)
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		if !pagination.HasNextPage {
			return ids
		}
	}
}
