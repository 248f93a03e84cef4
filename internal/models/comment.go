package models

import (
	"time"
)

// Comment on a topic. Append-only; listed newest first. The author is a weak
// reference resolved by join at read time for display.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TopicID   string    `gorm:"size:36;not null;index" json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
}
