package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stackquest/stackquest-api/internal/config"
	"github.com/stackquest/stackquest-api/internal/models"
	"github.com/stackquest/stackquest-api/internal/services"
)

func TestHandleGuestLogin(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db, nil, services.NewUnlockService(db))

	req, _ := http.NewRequest("POST", "/auth/guest", nil)
	rr := httptest.NewRecorder()

	handler.HandleGuestLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %v", rr.Code)
	}

	var body struct {
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		Guest    bool   `json:"guest"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Guest {
		t.Error("expected guest flag in response")
	}

	var user models.User
	if err := db.First(&user, body.UserID).Error; err != nil {
		t.Fatalf("guest user not persisted: %v", err)
	}
	if !user.Guest {
		t.Error("expected persisted user to be a guest")
	}

	// Guests get the sign-in achievement like everyone else.
	var grant models.AchievementGrant
	err := db.Joins("JOIN achievements ON achievements.id = achievement_grants.achievement_id").
		Where("achievement_grants.user_id = ? AND achievements.name = ?", user.ID, WelcomeAchievementName).
		First(&grant).Error
	if err != nil {
		t.Errorf("expected %q grant for guest user: %v", WelcomeAchievementName, err)
	}

	// The auth cookie is usable against protected operations.
	var authCookie string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "auth_token" {
			authCookie = "auth_token=" + c.Value
		}
	}
	if authCookie == "" {
		t.Fatal("expected auth_token cookie to be set")
	}

	userID, err := handler.Authorize(req.Context(), AuthInput{Cookie: authCookie})
	if err != nil {
		t.Fatalf("Authorize with guest cookie failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, userID)
	}

	// Two guest sign-ins mint distinct users.
	rr2 := httptest.NewRecorder()
	handler.HandleGuestLogin(rr2, req)
	var count int64
	db.Model(&models.User{}).Where("guest = ?", true).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 guest users, got %d", count)
	}
}
