package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/coeus/internal/rbac"
)

const (
	guestCookie = "coeus_guest_id"
	guestPrefix = "guest|"
	guestTTL    = 30 * 24 * time.Hour
)

// POST /auth/guest
//
// GuestLoginHandler issues a learner token for an anonymous browser. The
// guest id lives in a cookie so the same browser keeps its progress.
func GuestLoginHandler(a *AuthService, secureCookie bool) http.HandlerFunc {
	type response struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
		Role        string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, guestPrefix) {
			if _, err := uuid.Parse(strings.TrimPrefix(c.Value, guestPrefix)); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = guestPrefix + uuid.NewString()
		}

		tok, err := a.IssueJWT(id, rbac.RoleLearner)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		sameSite := http.SameSiteLaxMode
		if secureCookie {
			sameSite = http.SameSiteNoneMode
		}
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: sameSite,
			Expires:  a.now().Add(guestTTL),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{
			AccessToken: tok,
			Username:    "guest-" + id[len(id)-6:],
			Role:        rbac.RoleLearner,
		})
	}
}
