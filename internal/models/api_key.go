package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets non-browser clients (component-demo embeds, scripted tours)
// call the API without the cookie flow.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id"`
	User       User       `json:"user"`
	Key        string     `json:"key" gorm:"uniqueIndex"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
