package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/coeus/internal/config"
	"github.com/mind-engage/coeus/internal/store/storetest"
)

func TestRouter(t *testing.T) {
	cfg := config.Config{
		Mode:               config.ModeOffline,
		AuthSecret:         "test-secret",
		EnableLocalAuth:    true,
		CORSOriginsOffline: []string{"http://localhost:3000"},
	}
	h := newRouter(cfg, storetest.Open(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/queue/next", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ada","password":"ada"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "learner", login.Role)

	req := httptest.NewRequest(http.MethodGet, "/queue/next", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRetryConfig(t *testing.T) {
	assert.Equal(t, 5, retryConfig(config.Config{GradeRetries: 5}).MaxAttempts)
	assert.Equal(t, 3, retryConfig(config.Config{}).MaxAttempts)
}
