package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stackquest/stackquest-api/internal/models"
)

// AuthInput is embedded in every protected request struct. Browser clients
// send the JWT cookie; embeds and scripts send an API key header.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie (auth_token)"`
	APIKey string `header:"X-API-KEY" doc:"API key for non-browser clients"`
}

// Authorize resolves the calling user from an API key or the auth cookie.
// Cookie tokens are checked against the session cache first so steady
// traffic does not re-verify the JWT on every request.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (uint, error) {
	if in.APIKey != "" {
		var key models.APIKey
		if err := h.db.Where("key = ?", in.APIKey).First(&key).Error; err != nil {
			return 0, huma.Error401Unauthorized("Invalid API key")
		}
		if key.ExpiresAt != nil && time.Now().After(*key.ExpiresAt) {
			return 0, huma.Error401Unauthorized("API key expired")
		}
		h.db.Model(&key).Update("last_used_at", time.Now())
		return key.UserID, nil
	}

	token := TokenFromCookieHeader(in.Cookie)
	if token == "" {
		return 0, huma.Error401Unauthorized("No token found")
	}

	if h.sessions != nil {
		if userID, ok := h.sessions.Get(token); ok {
			return userID, nil
		}
	}

	userID, err := h.parseToken(token)
	if err != nil {
		return 0, huma.Error401Unauthorized("Invalid token")
	}
	if h.sessions != nil {
		h.sessions.Set(token, userID)
	}
	return userID, nil
}

// SessionKey identifies the calling client for per-session state such as the
// notification feed. API-key clients key on the key itself, cookie clients on
// their token.
func SessionKey(in AuthInput) string {
	if in.APIKey != "" {
		return "key:" + in.APIKey
	}
	return "tok:" + TokenFromCookieHeader(in.Cookie)
}

// TokenFromCookieHeader extracts the auth_token value from a raw Cookie
// header as huma delivers it.
func TokenFromCookieHeader(header string) string {
	if header == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": []string{header}}}
	c, err := req.Cookie("auth_token")
	if err != nil {
		return ""
	}
	return c.Value
}
