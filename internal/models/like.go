package models

import "time"

// Like records one user's like on a post. The composite unique index is what
// makes liking a toggle rather than an increment: a user id appears in a
// post's likes set at most once. Unliking hard-deletes the row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
