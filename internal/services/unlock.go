package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockResult reports the outcome of an unlock attempt. "Already held" and
// "achievement does not exist" are normal outcomes, not errors; only store
// failures surface as errors.
type UnlockResult struct {
	Granted     bool
	AlreadyHeld bool
	Achievement *models.Achievement
}

// UnlockService is the single grant path. Every trigger site (theme switch,
// progress thresholds, component demos, sign-in) goes through it rather than
// re-implementing its own lookup-and-insert sequence.
type UnlockService struct {
	db *gorm.DB
}

func NewUnlockService(db *gorm.DB) *UnlockService {
	return &UnlockService{db: db}
}

// UnlockByID grants the achievement with the given canonical ID to the user
// unless they already hold it.
func (s *UnlockService) UnlockByID(userID, achievementID uint) (UnlockResult, error) {
	var achievement models.Achievement
	err := s.db.First(&achievement, achievementID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("unlock: no achievement with id %d", achievementID)
		return UnlockResult{}, nil
	}
	if err != nil {
		return UnlockResult{}, fmt.Errorf("resolve achievement %d: %w", achievementID, err)
	}
	return s.grant(userID, &achievement)
}

// UnlockByName resolves a display name to its canonical ID and delegates.
// Names are a secondary lookup index; the ID is the key everywhere else.
// Call sites probe optimistically, so an unknown name is a logged no-op.
func (s *UnlockService) UnlockByName(userID uint, name string) (UnlockResult, error) {
	var achievement models.Achievement
	err := s.db.Where("name = ?", name).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("unlock: no achievement named %q", name)
		return UnlockResult{}, nil
	}
	if err != nil {
		return UnlockResult{}, fmt.Errorf("resolve achievement %q: %w", name, err)
	}
	return s.grant(userID, &achievement)
}

// grant inserts with ON CONFLICT DO NOTHING against the (user, achievement)
// unique index. A zero-row insert means another request won the race or the
// user already held the achievement; both read as AlreadyHeld.
func (s *UnlockService) grant(userID uint, achievement *models.Achievement) (UnlockResult, error) {
	grant := models.AchievementGrant{
		UserID:        userID,
		AchievementID: achievement.ID,
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&grant)
	if res.Error != nil {
		return UnlockResult{}, fmt.Errorf("insert grant (user %d, achievement %d): %w", userID, achievement.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return UnlockResult{AlreadyHeld: true, Achievement: achievement}, nil
	}
	return UnlockResult{Granted: true, Achievement: achievement}, nil
}

// Grants returns the user's grants, newest unlock first.
func (s *UnlockService) Grants(userID uint) ([]models.AchievementGrant, error) {
	var grants []models.AchievementGrant
	err := s.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("list grants for user %d: %w", userID, err)
	}
	return grants, nil
}

// TotalPoints derives the user's point total from their grants. There is no
// stored total to drift out of sync.
func (s *UnlockService) TotalPoints(userID uint) (int, error) {
	var total int64
	err := s.db.Model(&models.AchievementGrant{}).
		Joins("JOIN achievements ON achievements.id = achievement_grants.achievement_id").
		Where("achievement_grants.user_id = ?", userID).
		Select("COALESCE(SUM(achievements.points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum points for user %d: %w", userID, err)
	}
	return int(total), nil
}
