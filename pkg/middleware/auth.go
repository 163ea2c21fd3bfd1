package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yeisme/filedock/pkg/configs"
	nlog "github.com/yeisme/filedock/pkg/log"
)

const identityKey = "identity"

type identityCtxKey struct{}

// 身份来源.
const (
	SourceJWT    = "jwt"
	SourceHeader = "header"
	SourceQuery  = "query"
)

// Identity 已解析的调用方身份.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role"`
	Source  string `json:"source"`
}

// Name 返回用于审计字段的调用方标识，email 优先.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}

	if i.Email != "" {
		return i.Email
	}

	return i.Subject
}

// Claims JWT 载荷.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken 校验 HS256 签名并解析身份. issuer 非空时校验 iss.
func ParseToken(secret, issuer, raw string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" && claims.Email == "" {
		return nil, errors.New("invalid token: missing subject")
	}

	return &Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    ParseRole(claims.Role),
		Source:  SourceJWT,
	}, nil
}

// AuthMiddleware 解析调用方身份并写入 gin.Context 与 request.Context，不做拒绝.
// 是否放行由各路由的 Policy 决定.
//   - jwt: Authorization: Bearer <token>
//   - header: oauth2-proxy 注入的 X-Auth-Request-Email / X-Forwarded-Email，角色取 role_header
//   - dev_allow_query: ?user=&role= 兜底，仅用于本地调试
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	jwtOn := conf.JWTEnabled()
	if jwtOn && conf.JWTSecret == "" {
		nlog.Logger().Warn().Msg("auth.jwt_secret 为空，JWT 身份解析已禁用")

		jwtOn = false
	}

	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		var who *Identity

		if jwtOn {
			if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
				id, err := ParseToken(conf.JWTSecret, conf.Issuer, raw)
				if err != nil {
					nlog.Logger().Debug().Err(err).Str("path", c.Request.URL.Path).Msg("reject bearer token")
				} else {
					who = id
				}
			}
		}

		if who == nil && conf.HeaderEnabled() {
			who = headerIdentity(c, conf.RoleHeader)
		}

		if who == nil && conf.DevAllowQuery {
			if u := strings.TrimSpace(c.Query("user")); u != "" {
				who = &Identity{Subject: u, Role: ParseRole(c.Query("role")), Source: SourceQuery}
			}
		}

		if who != nil {
			SetIdentity(c, who)
		}

		c.Next()
	}
}

// SetIdentity 写入身份.
func SetIdentity(c *gin.Context, who *Identity) {
	c.Set(identityKey, who)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), who))
}

// WithIdentity 将身份写入 context，便于下游 service 获取.
func WithIdentity(ctx context.Context, who *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, who)
}

// IdentityFromContext 从 context 获取身份，没有时返回 nil.
func IdentityFromContext(ctx context.Context) *Identity {
	who, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return who
}

// GetIdentity 从 gin.Context 获取身份，没有时返回 nil.
func GetIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if who, ok := v.(*Identity); ok {
			return who
		}
	}

	return IdentityFromContext(c.Request.Context())
}

func bearerToken(h string) (string, bool) {
	const prefix = "bearer "

	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(h[len(prefix):])

	return token, token != ""
}

func headerIdentity(c *gin.Context, roleHeader string) *Identity {
	email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	if email == "" {
		return nil
	}

	if roleHeader == "" {
		roleHeader = configs.DefaultAuthRoleHeader
	}

	return &Identity{
		Subject: email,
		Email:   email,
		Role:    ParseRole(c.GetHeader(roleHeader)),
		Source:  SourceHeader,
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
