package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ExternalID string `gorm:"uniqueIndex"` // GitHub user ID, or a generated guest token
	Username   string
	Email      string
	Avatar     string
	Guest      bool
	Theme      string
}
