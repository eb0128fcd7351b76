package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressMarker records that a user visited or completed a tracked section.
// One row per (user, section); VisitedAt is refreshed on revisit.
type ProgressMarker struct {
	gorm.Model
	UserID    uint      `gorm:"uniqueIndex:idx_user_section" json:"user_id"`
	SectionID string    `gorm:"uniqueIndex:idx_user_section" json:"section_id"`
	User      User      `json:"-"`
	VisitedAt time.Time `json:"visited_at"`
}
