package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/coeus/internal/rbac"
)

func login(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewAuthService("test-secret")
	h := LoginHandler(a, LoginOptions{AdminUser: "admin", AdminPassHash: string(hash), LocalAuth: true})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantRole string
	}{
		{"admin", `{"username":"admin","password":"s3cret"}`, http.StatusOK, rbac.RoleAdmin},
		{"admin wrong password", `{"username":"admin","password":"admin"}`, http.StatusUnauthorized, ""},
		{"learner", `{"username":"ada","password":"ada"}`, http.StatusOK, rbac.RoleLearner},
		{"author", `{"username":"bo","password":"bo","role":"author"}`, http.StatusOK, rbac.RoleAuthor},
		{"self-declared admin", `{"username":"eve","password":"eve","role":"admin"}`, http.StatusUnauthorized, ""},
		{"mismatched password", `{"username":"ada","password":"x"}`, http.StatusUnauthorized, ""},
		{"bad json", `{`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := login(t, h, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var out struct {
				AccessToken string `json:"access_token"`
				Role        string `json:"role"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, tt.wantRole, out.Role)
			c, err := a.Parse(out.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, c.Role)
		})
	}

	closed := LoginHandler(a, LoginOptions{AdminUser: "admin", AdminPassHash: string(hash)})
	assert.Equal(t, http.StatusUnauthorized, login(t, closed, `{"username":"ada","password":"ada"}`).Code)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	tok, err := a.IssueJWT("ada", rbac.RoleLearner)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/queue/next", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", gotSub)
	assert.Equal(t, rbac.RoleLearner, gotRole)

	other, err := NewAuthService("other-secret").IssueJWT("ada", rbac.RoleAdmin)
	require.NoError(t, err)
	expired := NewAuthService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	old, err := expired.IssueJWT("ada", rbac.RoleLearner)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"wrong secret": "Bearer " + other,
		"expired":      "Bearer " + old,
	} {
		req := httptest.NewRequest(http.MethodGet, "/queue/next", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}
