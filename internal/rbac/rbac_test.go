package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role, perm string
		want       bool
	}{
		{RoleLearner, PermExamTake, true},
		{RoleLearner, PermQueueView, true},
		{RoleLearner, PermContentCreate, false},
		{RoleAuthor, PermContentUpdate, true},
		{RoleAuthor, PermContentView, true},
		{RoleAuthor, PermExamTake, false},
		{RoleAdmin, PermExamTake, true},
		{"", PermContentView, false},
		{"ghost", PermContentView, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Has(tt.role, tt.perm), "%s %s", tt.role, tt.perm)
	}
	assert.True(t, c.Any(RoleLearner, PermContentCreate, PermExamTake))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require(PermContentCreate)(ok)

	for role, want := range map[string]int{
		RoleAuthor:  http.StatusNoContent,
		RoleAdmin:   http.StatusNoContent,
		RoleLearner: http.StatusForbidden,
		"":          http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}
