// Package rule 封装 go-playground/validator，统一使用 rule 标签校验配置与请求参数.
//
// 除内置规则外注册了以下规则：
//
//	prefix         文件名前缀，仅字母数字、- 与 _，最长 64
//	route_segment  单个 URL 路径段，不含 / ? #，且不能是 api 或 swagger
//	category       上传分类 image|document|video|audio|any
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const tagName = "rule"

var (
	inst *validator.Validate
	once sync.Once

	prefixPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	routeSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

	// 引擎根路径下已占用的段
	reservedSegments = []string{"api", "swagger"}
)

func initValidator() {
	inst = validator.New(validator.WithRequiredStructEnabled())
	inst.SetTagName(tagName)
	inst.RegisterTagNameFunc(fieldName)

	_ = inst.RegisterValidation("prefix", matches(prefixPattern))
	_ = inst.RegisterValidation("route_segment", routeSegment)
	inst.RegisterAlias("category", "oneof=image document video audio any")
}

// fieldName 错误中使用 mapstructure / form / json 标签名，便于对应配置键或查询参数.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return f.Name
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func routeSegment(fl validator.FieldLevel) bool {
	seg := fl.Field().String()

	return routeSegmentPattern.MatchString(seg) && !slices.Contains(reservedSegments, seg)
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	once.Do(initValidator)

	return inst
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	return Engine().Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("avatar", "prefix").
func ValidateVar(field any, tag string) error {
	return Engine().Var(field, tag)
}

// ValidationErrors 字段路径到可读错误信息.
type ValidationErrors map[string]string

// Errors 把 validator 错误转换为 ValidationErrors，非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))

	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}

		out[ns] = describe(fe)
	}

	return out
}

// Message 把校验错误格式化为单行信息，字段按名称排序.
func Message(err error) string {
	errs := Errors(err)
	if errs == nil {
		return err.Error()
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+errs[k])
	}

	return strings.Join(parts, "; ")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when " + fe.Param()
	case "oneof", "category":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "prefix":
		return "may contain only letters, digits, '-' and '_' (max 64)"
	case "route_segment":
		return "must be a single path segment other than " + strings.Join(reservedSegments, ", ")
	case "url":
		return "must be an absolute URL"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}
