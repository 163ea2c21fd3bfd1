package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/errs"
)

const (
	maxLimiterKeys = 10000
	limiterIdleTTL = 10 * time.Minute
)

// keyFunc 从请求中取限流维度的键.
type keyFunc func(c *gin.Context) string

// RateLimitMiddleware 令牌桶限流. 按键限流时每个键一个 limiter，
// 闲置超过 limiterIdleTTL 或超过 maxLimiterKeys 时被淘汰.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	key := rateLimitKey(cfg.Key)
	if key == nil {
		global := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
		return limit(func(*gin.Context) *rate.Limiter { return global })
	}

	limiters := expirable.NewLRU[string, *rate.Limiter](maxLimiterKeys, nil, limiterIdleTTL)

	return limit(func(c *gin.Context) *rate.Limiter {
		k := key(c)
		if l, ok := limiters.Get(k); ok {
			return l
		}

		l := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
		limiters.Add(k, l)

		return l
	})
}

func limit(pick func(c *gin.Context) *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !pick(c).Allow() {
			AbortWithError(c, errs.RateLimited("rate limit exceeded, please retry later"))
			return
		}

		c.Next()
	}
}

// rateLimitKey 解析 rate_limit.key；global 或空值返回 nil.
//
//	ip                  客户端 IP
//	user                身份 subject，匿名请求退回 IP
//	header:X-Api-Key    指定请求头，缺失时退回 IP
func rateLimitKey(mode string) keyFunc {
	mode = strings.TrimSpace(mode)

	switch lower := strings.ToLower(mode); {
	case lower == "" || lower == "global":
		return nil
	case lower == "user":
		return func(c *gin.Context) string {
			if who := GetIdentity(c); who != nil {
				return "user:" + who.Subject
			}

			return "ip:" + c.ClientIP()
		}
	case strings.HasPrefix(lower, "header:"):
		header := mode[len("header:"):]

		return func(c *gin.Context) string {
			if v := c.GetHeader(header); v != "" {
				return "h:" + v
			}

			return "ip:" + c.ClientIP()
		}
	default:
		return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
	}
}
