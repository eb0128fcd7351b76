package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stackquest/stackquest-api/internal/auth"
	"github.com/stackquest/stackquest-api/internal/models"
	"github.com/stackquest/stackquest-api/internal/notifier"
	"github.com/stackquest/stackquest-api/internal/services"
	"gorm.io/gorm"
)

type AchievementHandler struct {
	db          *gorm.DB
	unlock      *services.UnlockService
	feeds       *notifier.Hub
	authHandler *auth.AuthHandler
}

func NewAchievementHandler(db *gorm.DB, unlock *services.UnlockService, feeds *notifier.Hub, authHandler *auth.AuthHandler) *AchievementHandler {
	return &AchievementHandler{db: db, unlock: unlock, feeds: feeds, authHandler: authHandler}
}

type UnlockRequest struct {
	auth.AuthInput
	Body struct {
		AchievementID uint   `json:"achievement_id,omitempty" doc:"Canonical achievement ID"`
		Name          string `json:"name,omitempty" doc:"Achievement name, used when no ID is known"`
	}
}

type UnlockResponse struct {
	Body struct {
		Granted     bool                `json:"granted"`
		AlreadyHeld bool                `json:"already_held"`
		Achievement *models.Achievement `json:"achievement,omitempty"`
	}
}

// HandleUnlock is the entry point every UI trigger calls: component demos,
// code validation, guided steps. Unknown references come back as a quiet
// non-grant because many call sites probe for optional achievements.
func (h *AchievementHandler) HandleUnlock(ctx context.Context, input *UnlockRequest) (*UnlockResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var result services.UnlockResult
	switch {
	case input.Body.AchievementID != 0:
		result, err = h.unlock.UnlockByID(userID, input.Body.AchievementID)
	case input.Body.Name != "":
		result, err = h.unlock.UnlockByName(userID, input.Body.Name)
	default:
		return nil, huma.Error400BadRequest("Either achievement_id or name is required")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to process unlock")
	}

	res := &UnlockResponse{}
	res.Body.Granted = result.Granted
	res.Body.AlreadyHeld = result.AlreadyHeld
	res.Body.Achievement = result.Achievement
	return res, nil
}

type CatalogRequest struct {
	auth.AuthInput
}

type CatalogResponse struct {
	Body struct {
		Achievements []models.Achievement `json:"achievements"`
	}
}

func (h *AchievementHandler) HandleCatalog(ctx context.Context, input *CatalogRequest) (*CatalogResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var achievements []models.Achievement
	if err := h.db.Order("category, name").Find(&achievements).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list achievements")
	}

	res := &CatalogResponse{}
	res.Body.Achievements = achievements
	return res, nil
}

type GrantEntry struct {
	GrantID     uint      `json:"grant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Category    string    `json:"category"`
	Icon        string    `json:"icon,omitempty"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

type MyAchievementsRequest struct {
	auth.AuthInput
}

type MyAchievementsResponse struct {
	Body struct {
		Achievements []GrantEntry `json:"achievements"`
		TotalPoints  int          `json:"total_points"`
	}
}

func (h *AchievementHandler) HandleMine(ctx context.Context, input *MyAchievementsRequest) (*MyAchievementsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	grants, err := h.unlock.Grants(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list achievements")
	}
	points, err := h.unlock.TotalPoints(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to compute points")
	}

	res := &MyAchievementsResponse{}
	res.Body.TotalPoints = points
	for _, g := range grants {
		res.Body.Achievements = append(res.Body.Achievements, GrantEntry{
			GrantID:     g.ID,
			Name:        g.Achievement.Name,
			Description: g.Achievement.Description,
			Points:      g.Achievement.Points,
			Category:    g.Achievement.Category,
			Icon:        g.Achievement.Icon,
			UnlockedAt:  g.CreatedAt,
		})
	}
	return res, nil
}

type NotificationsRequest struct {
	auth.AuthInput
}

type NotificationsResponse struct {
	Body struct {
		Notifications []notifier.Notification `json:"notifications"`
	}
}

// HandleNotifications diffs the caller's grant list against what their
// session last saw. The first poll of a session arms the feed and returns
// nothing, so a page load never replays old unlocks as toasts.
func (h *AchievementHandler) HandleNotifications(ctx context.Context, input *NotificationsRequest) (*NotificationsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	grants, err := h.unlock.Grants(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list achievements")
	}

	views := make([]notifier.GrantView, 0, len(grants))
	for _, g := range grants {
		views = append(views, notifier.GrantView{
			GrantID:     g.ID,
			Name:        g.Achievement.Name,
			Description: g.Achievement.Description,
			Points:      g.Achievement.Points,
		})
	}

	feed := h.feeds.Feed(auth.SessionKey(input.AuthInput))
	res := &NotificationsResponse{}
	res.Body.Notifications = feed.Observe(views)
	return res, nil
}
