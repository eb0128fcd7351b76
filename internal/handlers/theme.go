package handlers

import (
	"context"
	"log"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stackquest/stackquest-api/internal/auth"
	"github.com/stackquest/stackquest-api/internal/models"
	"github.com/stackquest/stackquest-api/internal/services"
	"gorm.io/gorm"
)

type ThemeHandler struct {
	db          *gorm.DB
	gate        *services.ThemeAchievementGate
	authHandler *auth.AuthHandler
}

func NewThemeHandler(db *gorm.DB, gate *services.ThemeAchievementGate, authHandler *auth.AuthHandler) *ThemeHandler {
	return &ThemeHandler{db: db, gate: gate, authHandler: authHandler}
}

type ThemeRequest struct {
	auth.AuthInput
	Body struct {
		Theme string `json:"theme" doc:"Name of the theme to switch to" required:"true"`
	}
}

type ThemeResponse struct {
	Body struct {
		Theme       string              `json:"theme"`
		Achievement *models.Achievement `json:"achievement,omitempty"`
	}
}

// HandleThemeChange saves the preference first; the achievement is a
// delight-feature, so a failed gate never fails the theme switch.
func (h *ThemeHandler) HandleThemeChange(ctx context.Context, input *ThemeRequest) (*ThemeResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if input.Body.Theme == "" {
		return nil, huma.Error400BadRequest("theme is required")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Update("theme", input.Body.Theme).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to save theme")
	}

	res := &ThemeResponse{}
	res.Body.Theme = input.Body.Theme

	achievement, err := h.gate.MaybeUnlockThemeAchievement(userID, input.Body.Theme)
	if err != nil {
		log.Printf("theme achievement check failed for user %d: %v", userID, err)
		return res, nil
	}
	res.Body.Achievement = achievement
	return res, nil
}
