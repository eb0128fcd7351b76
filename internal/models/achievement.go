package models

import (
	"gorm.io/gorm"
)

// Achievement categories. The catalog is reference data seeded at startup;
// user actions never mutate it.
const (
	CategoryLearning       = "learning"
	CategoryGettingStarted = "getting-started"
	CategoryTheme          = "theme"
	CategoryComponent      = "component"
	CategorySpecial        = "special"
)

type Achievement struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex" json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
	Component   string `json:"component,omitempty"` // optional context slug, e.g. "playground"
	Icon        string `json:"icon,omitempty"`
}

// AchievementGrant records that a user holds an achievement. The composite
// unique index is what makes concurrent duplicate unlocks safe: the second
// insert hits the conflict target and affects zero rows.
type AchievementGrant struct {
	gorm.Model
	UserID        uint        `gorm:"uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint        `gorm:"uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement `json:"achievement"`
	User          User        `json:"-"`
}
