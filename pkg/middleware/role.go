package middleware

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filedock/pkg/internal/errs"
)

// Role 调用方角色，数值越大权限越高.
type Role int

const (
	RoleGuest Role = iota + 1
	RoleUser
	RoleTrainer
	RoleAdmin
	RoleSuperAdmin
)

// String 返回角色名.
func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleAdmin:
		return "admin"
	case RoleTrainer:
		return "trainer"
	case RoleUser:
		return "user"
	case RoleGuest:
		fallthrough
	default:
		return "guest"
	}
}

// MarshalJSON 以角色名输出.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ParseRole 解析角色名，未知值降级为 guest.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "super_admin", "super-admin", "superadmin":
		return RoleSuperAdmin
	case "admin":
		return RoleAdmin
	case "trainer":
		return RoleTrainer
	case "user":
		return RoleUser
	default:
		return RoleGuest
	}
}

// Policy 挂在路由上的静态访问策略，定义时创建一次，每个请求求值.
type Policy struct {
	public bool
	roles  []Role // 为空且非 public 时只要求已认证
}

// Public 免认证.
func Public() Policy {
	return Policy{public: true}
}

// Authenticated 任意已认证身份（含 guest）.
func Authenticated() Policy {
	return Policy{}
}

// RequireRoles 要求角色属于给定集合.
func RequireRoles(roles ...Role) Policy {
	return Policy{roles: slices.Clone(roles)}
}

// RequireSuperAdmin 仅 super_admin.
func RequireSuperAdmin() Policy { return RequireRoles(RoleSuperAdmin) }

// RequireAdmin admin 或 super_admin.
func RequireAdmin() Policy { return RequireRoles(RoleAdmin, RoleSuperAdmin) }

// RequireAdminOrTrainer admin、super_admin 或 trainer.
func RequireAdminOrTrainer() Policy { return RequireRoles(RoleAdmin, RoleSuperAdmin, RoleTrainer) }

// RequireTrainer 仅 trainer.
func RequireTrainer() Policy { return RequireRoles(RoleTrainer) }

// RequireAllUsers 除 guest 外的全部角色.
func RequireAllUsers() Policy {
	return RequireRoles(RoleUser, RoleAdmin, RoleTrainer, RoleSuperAdmin)
}

// RequireUser 仅 user.
func RequireUser() Policy { return RequireRoles(RoleUser) }

// IsPublic 是否免认证.
func (p Policy) IsPublic() bool {
	return p.public
}

// Roles 返回允许的角色副本.
func (p Policy) Roles() []Role {
	return slices.Clone(p.roles)
}

// Authorize 按策略判定. 无身份返回 Unauthorized，角色不在集合中返回 Forbidden.
func Authorize(who *Identity, p Policy) error {
	if p.public {
		return nil
	}

	if who == nil {
		return errs.Unauthorized("authentication required")
	}

	if len(p.roles) == 0 || slices.Contains(p.roles, who.Role) {
		return nil
	}

	return errs.Forbidden("forbidden: insufficient role")
}

// GuardedHandler 接收已授权身份的处理函数. Public 路由上 who 可能为 nil.
type GuardedHandler func(c *gin.Context, who *Identity)

// Guard 先执行 Authorize，通过后把身份显式传给 handler.
func Guard(p Policy, h GuardedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := GetIdentity(c)
		if err := Authorize(who, p); err != nil {
			AbortWithError(c, err)
			return
		}

		h(c, who)
	}
}

// RequirePolicy 作为路由组中间件使用的策略检查.
func RequirePolicy(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authorize(GetIdentity(c), p); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}
