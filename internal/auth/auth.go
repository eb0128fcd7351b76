package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stackquest/stackquest-api/internal/config"
	"github.com/stackquest/stackquest-api/internal/models"
	"github.com/stackquest/stackquest-api/internal/services"
	"github.com/stackquest/stackquest-api/internal/sessioncache"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	GithubAuthorizeEndpoint = "https://github.com/login/oauth/authorize"
	GithubTokenEndpoint     = "https://github.com/login/oauth/access_token"
	GithubUserAPI           = "https://api.github.com/user"

	TokenDuration = 24 * time.Hour

	// WelcomeAchievementName is granted on a user's first successful sign-in.
	WelcomeAchievementName = "Welcome Aboard"
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	sessions    *sessioncache.Cache
	unlock      *services.UnlockService
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, sessions *sessioncache.Cache, unlock *services.UnlockService) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  cfg.GithubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  GithubAuthorizeEndpoint,
				TokenURL: GithubTokenEndpoint,
			},
		},
		db:       db,
		cfg:      cfg,
		sessions: sessions,
		unlock:   unlock,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(context.Background(), token)

	resp, err := client.Get(GithubUserAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var githubUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&githubUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	var user models.User
	externalID := strconv.FormatInt(githubUser.ID, 10)
	if err := h.db.FirstOrInit(&user, models.User{ExternalID: externalID}).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	user.Username = githubUser.Login
	user.Email = githubUser.Email
	user.Avatar = githubUser.AvatarURL

	if err := h.db.Save(&user).Error; err != nil {
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	// Idempotent, so returning visitors are a no-op. A failed grant never
	// blocks the sign-in itself.
	if h.unlock != nil {
		if _, err := h.unlock.UnlockByName(user.ID, WelcomeAchievementName); err != nil {
			log.Printf("welcome achievement for user %d failed: %v", user.ID, err)
		}
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.setAuthCookie(w, jwtToken)
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

// HandleGuestLogin mints a guest user so visitors can collect achievements
// before they sign in with GitHub.
func (h *AuthHandler) HandleGuestLogin(w http.ResponseWriter, r *http.Request) {
	deviceToken := uuid.NewString()
	user := models.User{
		ExternalID: "guest-" + deviceToken,
		Username:   "guest-" + deviceToken[:8],
		Guest:      true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		http.Error(w, "Failed to create guest user", http.StatusInternalServerError)
		return
	}

	// Guests sign in too, so they earn the same first-visit achievement as
	// GitHub users. A failed grant never blocks the login itself.
	if h.unlock != nil {
		if _, err := h.unlock.UnlockByName(user.ID, WelcomeAchievementName); err != nil {
			log.Printf("welcome achievement for guest %d failed: %v", user.ID, err)
		}
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.setAuthCookie(w, jwtToken)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"guest":    true,
	})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	})
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) parseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid user_id claim")
	}
	return uint(userIDFloat), nil
}
