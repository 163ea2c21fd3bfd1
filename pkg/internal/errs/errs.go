// Package errs 定义文件管道中的错误分类，处理层据此映射 HTTP 状态码.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别.
type Kind uint8

const (
	KindUnknown      Kind = iota
	KindValidation        // 客户端输入不合法
	KindNotFound          // 记录不存在
	KindPersistence       // 数据库写入或删除失败
	KindPhysicalIO        // 文件系统读写失败
	KindUnauthorized      // 缺少身份
	KindForbidden         // 角色不满足
	KindRateLimited       // 请求过于频繁
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindPhysicalIO:
		return "physical_io"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error 带类别的错误. Message 可以返回给客户端，Cause 只用于服务端日志.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation 构造校验错误.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound 构造未找到错误.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Persistence 包装数据库错误.
func Persistence(msg string, cause error) error {
	return &Error{Kind: KindPersistence, Message: msg, Cause: cause}
}

// PhysicalIO 包装文件系统错误.
func PhysicalIO(msg string, cause error) error {
	return &Error{Kind: KindPhysicalIO, Message: msg, Cause: cause}
}

// Unauthorized 构造未认证错误.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden 构造无权限错误.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// RateLimited 构造限流错误.
func RateLimited(msg string) error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// KindOf 返回 err 链上第一个 *Error 的类别.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Is 判断 err 是否属于类别 k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// HTTPStatus 将错误映射为 HTTP 状态码.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可以暴露给客户端的信息，内部错误不带原因.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}

	switch e.Kind {
	case KindPersistence, KindPhysicalIO, KindUnknown:
		return "internal server error"
	default:
		return e.Message
	}
}
