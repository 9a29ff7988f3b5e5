package rbac

import (
	"context"
	"slices"
	"strings"
)

// Checker answers role -> permission questions. Permissions may end in "*"
// to match a prefix; "*" alone matches everything.
type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	return slices.ContainsFunc(c.RolePermissions[role], func(p string) bool {
		return matchPerm(p, perm)
	})
}

func (c *Checker) Any(role string, perms ...string) bool {
	return slices.ContainsFunc(perms, func(p string) bool { return c.Has(role, p) })
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
