package auth

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stackquest/stackquest-api/internal/models"
)

type MeRequest struct {
	AuthInput
}

type MeResponse struct {
	Body struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Avatar   string `json:"avatar"`
		Guest    bool   `json:"guest"`
		Theme    string `json:"theme"`
		Points   int    `json:"points"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	userID, err := h.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error404NotFound("User not found")
	}

	points := 0
	if h.unlock != nil {
		points, err = h.unlock.TotalPoints(userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to compute points")
		}
	}

	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.Username = user.Username
	res.Body.Email = user.Email
	res.Body.Avatar = user.Avatar
	res.Body.Guest = user.Guest
	res.Body.Theme = user.Theme
	res.Body.Points = points
	return res, nil
}

type UpdateAvatarRequest struct {
	AuthInput
	Body struct {
		Avatar string `json:"avatar" doc:"URL of the new avatar image" required:"true"`
	}
}

type UpdateAvatarResponse struct {
	Body struct {
		Avatar string `json:"avatar"`
	}
}

func (h *AuthHandler) HandleUpdateAvatar(ctx context.Context, input *UpdateAvatarRequest) (*UpdateAvatarResponse, error) {
	userID, err := h.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Update("avatar", input.Body.Avatar).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update avatar")
	}

	res := &UpdateAvatarResponse{}
	res.Body.Avatar = input.Body.Avatar
	return res, nil
}
