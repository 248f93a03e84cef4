package models

import (
	"time"
)

// Topic is a voting subject. Created, updated and deleted only by admins;
// regular users interact with it through votes and comments.
type Topic struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Category    string    `gorm:"not null;index" json:"category"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
