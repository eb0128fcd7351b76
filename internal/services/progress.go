package services

import (
	"fmt"
	"time"

	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GettingStartedSteps is the ordered guided checklist shown on the landing
// page. ProgressTracker counts distinct completed steps against it.
var GettingStartedSteps = []string{
	"install",
	"configure",
	"first-component",
	"theming",
	"playground",
	"deploy",
}

// LearningSections are the slugs of the learning routes.
var LearningSections = []string{
	"components",
	"composables",
	"routing",
	"state",
	"styling",
	"testing",
	"deployment",
}

// tier maps a distinct-visit count to the achievement it unlocks.
type tier struct {
	count int
	name  string
}

var learningTiers = []tier{
	{1, "Learning Starter"},
	{5, "Learning Master"},
}

var gettingStartedTiers = []tier{
	{1, "First Steps"},
	{3, "Setup Apprentice"},
	{6, "Setup Master"},
}

// ProgressTracker records visit markers and derives threshold achievements
// from the distinct-section count. Thresholds are re-evaluated on every
// visit; the unlock service's idempotence keeps each tier to a single grant.
type ProgressTracker struct {
	db     *gorm.DB
	unlock *UnlockService
}

func NewProgressTracker(db *gorm.DB, unlock *UnlockService) *ProgressTracker {
	return &ProgressTracker{db: db, unlock: unlock}
}

// RecordVisit upserts the (user, section) marker and returns the achievements
// newly granted by this visit. Sections outside the recognized sets are still
// recorded but trigger nothing.
func (t *ProgressTracker) RecordVisit(userID uint, sectionID string) ([]models.Achievement, error) {
	now := time.Now()
	marker := models.ProgressMarker{
		UserID:    userID,
		SectionID: sectionID,
		VisitedAt: now,
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "section_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"visited_at": now}),
	}).Create(&marker).Error
	if err != nil {
		return nil, fmt.Errorf("record visit (user %d, section %q): %w", userID, sectionID, err)
	}

	group, tiers := sectionGroup(sectionID)
	if tiers == nil {
		return nil, nil
	}

	var count int64
	err = t.db.Model(&models.ProgressMarker{}).
		Where("user_id = ? AND section_id IN ?", userID, group).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("count visits for user %d: %w", userID, err)
	}

	var granted []models.Achievement
	for _, tr := range tiers {
		if int(count) < tr.count {
			continue
		}
		res, err := t.unlock.UnlockByName(userID, tr.name)
		if err != nil {
			return granted, err
		}
		if res.Granted {
			granted = append(granted, *res.Achievement)
		}
	}
	return granted, nil
}

func sectionGroup(sectionID string) ([]string, []tier) {
	for _, s := range GettingStartedSteps {
		if s == sectionID {
			return GettingStartedSteps, gettingStartedTiers
		}
	}
	for _, s := range LearningSections {
		if s == sectionID {
			return LearningSections, learningTiers
		}
	}
	return nil, nil
}
