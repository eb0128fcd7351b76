package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stackquest/stackquest-api/internal/auth"
	"github.com/stackquest/stackquest-api/internal/models"
	"github.com/stackquest/stackquest-api/internal/services"
)

type ProgressHandler struct {
	tracker     *services.ProgressTracker
	authHandler *auth.AuthHandler
}

func NewProgressHandler(tracker *services.ProgressTracker, authHandler *auth.AuthHandler) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, authHandler: authHandler}
}

type VisitRequest struct {
	auth.AuthInput
	Body struct {
		SectionID string `json:"section_id" doc:"Slug of the visited section or completed step" required:"true"`
	}
}

type VisitResponse struct {
	Body struct {
		NewlyUnlocked []models.Achievement `json:"newly_unlocked"`
	}
}

func (h *ProgressHandler) HandleVisit(ctx context.Context, input *VisitRequest) (*VisitResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if input.Body.SectionID == "" {
		return nil, huma.Error400BadRequest("section_id is required")
	}

	unlocked, err := h.tracker.RecordVisit(userID, input.Body.SectionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to record visit")
	}

	res := &VisitResponse{}
	res.Body.NewlyUnlocked = unlocked
	return res, nil
}
