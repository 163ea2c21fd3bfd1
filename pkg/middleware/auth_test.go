package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/middleware"
)

const secret = "test-secret"

func signToken(t *testing.T, key string, claims middleware.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return token
}

func claimsFor(sub, role string) middleware.Claims {
	return middleware.Claims{
		Email: sub + "@example.com",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "filedock-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authConfig(mode configs.AuthMode) configs.AuthConfig {
	return configs.AuthConfig{
		Enabled:    true,
		Mode:       mode,
		JWTSecret:  secret,
		Issuer:     "filedock-test",
		RoleHeader: "X-Role",
		SkipPaths:  []string{"/metrics"},
	}
}

func newEngine(conf configs.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(conf))
	r.GET("/me", middleware.Guard(middleware.Authenticated(), func(c *gin.Context, who *middleware.Identity) {
		c.JSON(http.StatusOK, who)
	}))
	r.DELETE("/files/:id", middleware.Guard(middleware.RequireAdminOrTrainer(), func(c *gin.Context, _ *middleware.Identity) {
		c.Status(http.StatusNoContent)
	}))
	r.GET("/public", middleware.Guard(middleware.Public(), func(c *gin.Context, who *middleware.Identity) {
		c.JSON(http.StatusOK, gin.H{"anonymous": who == nil})
	}))

	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestParseToken(t *testing.T) {
	id, err := middleware.ParseToken(secret, "filedock-test", signToken(t, secret, claimsFor("alice", "trainer")))
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, middleware.RoleTrainer, id.Role)
	assert.Equal(t, "alice@example.com", id.Name())

	_, err = middleware.ParseToken(secret, "filedock-test", signToken(t, "other", claimsFor("alice", "admin")))
	assert.Error(t, err)

	_, err = middleware.ParseToken(secret, "someone-else", signToken(t, secret, claimsFor("alice", "admin")))
	assert.Error(t, err)

	expired := claimsFor("bob", "admin")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = middleware.ParseToken(secret, "", signToken(t, secret, expired))
	assert.Error(t, err)
}

func TestAuthMiddleware_JWT(t *testing.T) {
	r := newEngine(authConfig(configs.AuthModeJWT))

	w := do(r, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer " + signToken(t, secret, claimsFor("alice", "admin")),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["subject"])
	assert.Equal(t, "admin", body["role"])

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer not-a-token",
	}).Code)
}

func TestAuthMiddleware_RolePolicy(t *testing.T) {
	r := newEngine(authConfig(configs.AuthModeJWT))

	for role, want := range map[string]int{
		"user":        http.StatusForbidden,
		"guest":       http.StatusForbidden,
		"trainer":     http.StatusNoContent,
		"admin":       http.StatusNoContent,
		"super_admin": http.StatusNoContent,
	} {
		w := do(r, http.MethodDelete, "/files/1", map[string]string{
			"Authorization": "Bearer " + signToken(t, secret, claimsFor("u", role)),
		})
		assert.Equal(t, want, w.Code, role)
	}
}

func TestAuthMiddleware_HeaderMode(t *testing.T) {
	r := newEngine(authConfig(configs.AuthModeHeader))

	w := do(r, http.MethodDelete, "/files/1", map[string]string{
		"X-Forwarded-Email": "ops@example.com",
		"X-Role":            "admin",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// header 模式下忽略 bearer token
	w = do(r, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer " + signToken(t, secret, claimsFor("alice", "admin")),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_PublicAndDisabled(t *testing.T) {
	r := newEngine(authConfig(configs.AuthModeJWT))

	w := do(r, http.MethodGet, "/public", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())

	conf := authConfig(configs.AuthModeJWT)
	conf.Enabled = false
	assert.Equal(t, http.StatusUnauthorized, do(newEngine(conf), http.MethodGet, "/me", nil).Code)
}

func TestAuthMiddleware_DevQuery(t *testing.T) {
	conf := authConfig(configs.AuthModeJWT)
	conf.DevAllowQuery = true

	w := do(newEngine(conf), http.MethodDelete, "/files/1?user=dev&role=trainer", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
