package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/middleware"
)

func who(r middleware.Role) *middleware.Identity {
	return &middleware.Identity{Subject: "u-1", Role: r, Source: middleware.SourceJWT}
}

func TestParseRole(t *testing.T) {
	cases := map[string]middleware.Role{
		"super_admin": middleware.RoleSuperAdmin,
		"Admin":       middleware.RoleAdmin,
		" trainer ":   middleware.RoleTrainer,
		"user":        middleware.RoleUser,
		"guest":       middleware.RoleGuest,
		"root":        middleware.RoleGuest,
		"":            middleware.RoleGuest,
	}

	for in, want := range cases {
		assert.Equal(t, want, middleware.ParseRole(in), in)
	}

	assert.Equal(t, "super_admin", middleware.RoleSuperAdmin.String())
	assert.Less(t, middleware.RoleGuest, middleware.RoleUser)
	assert.Less(t, middleware.RoleTrainer, middleware.RoleAdmin)
}

func TestAuthorize(t *testing.T) {
	all := []middleware.Role{
		middleware.RoleGuest, middleware.RoleUser, middleware.RoleTrainer,
		middleware.RoleAdmin, middleware.RoleSuperAdmin,
	}

	cases := []struct {
		name    string
		policy  middleware.Policy
		allowed []middleware.Role
	}{
		{"super admin", middleware.RequireSuperAdmin(), []middleware.Role{middleware.RoleSuperAdmin}},
		{"admin", middleware.RequireAdmin(), []middleware.Role{middleware.RoleAdmin, middleware.RoleSuperAdmin}},
		{"admin or trainer", middleware.RequireAdminOrTrainer(), []middleware.Role{middleware.RoleTrainer, middleware.RoleAdmin, middleware.RoleSuperAdmin}},
		{"trainer", middleware.RequireTrainer(), []middleware.Role{middleware.RoleTrainer}},
		{"all users", middleware.RequireAllUsers(), []middleware.Role{middleware.RoleUser, middleware.RoleTrainer, middleware.RoleAdmin, middleware.RoleSuperAdmin}},
		{"user", middleware.RequireUser(), []middleware.Role{middleware.RoleUser}},
		{"authenticated", middleware.Authenticated(), all},
		{"public", middleware.Public(), all},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, r := range all {
				err := middleware.Authorize(who(r), tc.policy)
				if contains(tc.allowed, r) {
					assert.NoError(t, err, r.String())
				} else {
					assert.True(t, errs.Is(err, errs.KindForbidden), r.String())
				}
			}
		})
	}
}

func TestAuthorize_NoIdentity(t *testing.T) {
	assert.NoError(t, middleware.Authorize(nil, middleware.Public()))

	err := middleware.Authorize(nil, middleware.Authenticated())
	assert.True(t, errs.Is(err, errs.KindUnauthorized))

	err = middleware.Authorize(nil, middleware.RequireAdmin())
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestPolicy_RolesIsCopy(t *testing.T) {
	p := middleware.RequireAdmin()
	roles := p.Roles()
	roles[0] = middleware.RoleGuest

	assert.Error(t, middleware.Authorize(who(middleware.RoleGuest), p))
	assert.False(t, p.IsPublic())
	assert.True(t, middleware.Public().IsPublic())
}

func contains(rs []middleware.Role, r middleware.Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}

	return false
}
