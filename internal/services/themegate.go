package services

import (
	"errors"
	"log"
	"time"

	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/gorm"
)

const (
	// ThemeAchievementName is the fixed name the gate unlocks.
	ThemeAchievementName = "Theme Master"

	// themeUnlockCooldown suppresses the recency check when a user toggles
	// themes rapidly. It is a de-duplication heuristic for noisy UI events,
	// not a semantic rule: the unlock itself stays idempotent without it.
	themeUnlockCooldown = 5 * time.Second
)

// ThemeAchievementGate wraps the unlock service for theme switches with a
// short cooldown so back-to-back toggles skip the duplicate-detection query.
type ThemeAchievementGate struct {
	db     *gorm.DB
	unlock *UnlockService
	now    func() time.Time
}

func NewThemeAchievementGate(db *gorm.DB, unlock *UnlockService, now func() time.Time) *ThemeAchievementGate {
	if now == nil {
		now = time.Now
	}
	return &ThemeAchievementGate{db: db, unlock: unlock, now: now}
}

// MaybeUnlockThemeAchievement returns the achievement if this switch granted
// it, nil if it was already held or the cooldown suppressed the check. A
// failed cooldown lookup is treated as "no recent grant" so a store hiccup
// never blocks a real unlock.
func (g *ThemeAchievementGate) MaybeUnlockThemeAchievement(userID uint, theme string) (*models.Achievement, error) {
	var last models.AchievementGrant
	err := g.db.Joins("JOIN achievements ON achievements.id = achievement_grants.achievement_id").
		Where("achievement_grants.user_id = ? AND achievements.name = ?", userID, ThemeAchievementName).
		Order("achievement_grants.created_at DESC").
		First(&last).Error
	if err == nil && g.now().Sub(last.CreatedAt) < themeUnlockCooldown {
		return nil, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("theme gate: cooldown check failed for user %d, proceeding: %v", userID, err)
	}

	res, err := g.unlock.UnlockByName(userID, ThemeAchievementName)
	if err != nil {
		return nil, err
	}
	if res.Granted {
		log.Printf("theme gate: user %d unlocked %q switching to %q", userID, ThemeAchievementName, theme)
		return res.Achievement, nil
	}
	return nil, nil
}
