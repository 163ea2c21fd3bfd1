// Package upload 包含上传管道在写盘之前的部分：分类到 MIME 白名单的映射、目录与文件名生成、
// 上传校验，以及请求中暂存文件的抽象.
package upload

import (
	"fmt"
	"slices"
	"strings"
)

// Category 上传文件的粗粒度分类，只用于选择白名单，不落库.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryAny      Category = "any"

	// DefaultCategory 请求未指定分类时使用.
	DefaultCategory = CategoryImage
)

// Categories 返回全部分类.
func Categories() []Category {
	return []Category{CategoryImage, CategoryDocument, CategoryVideo, CategoryAudio, CategoryAny}
}

// ParseCategory 解析分类，空字符串返回 DefaultCategory.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return DefaultCategory, nil
	}

	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Categories(), c) {
		return c, nil
	}

	return "", fmt.Errorf("unknown upload category %q", s)
}

// Policy 分类到 MIME 白名单的只读映射，进程启动时构建一次并按引用传递.
type Policy struct {
	table map[Category][]string
}

// DefaultPolicy 返回内置的分类白名单.
func DefaultPolicy() *Policy {
	return NewPolicy(map[Category][]string{
		CategoryImage: {
			"image/jpeg",
			"image/png",
			"image/webp",
			"image/gif",
			"image/svg+xml",
		},
		CategoryDocument: {
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
			"text/csv",
		},
		CategoryVideo: {
			"video/mp4",
			"video/webm",
			"video/ogg",
			"video/avi",
			"video/quicktime",
		},
		CategoryAudio: {
			"audio/mpeg",
			"audio/ogg",
			"audio/wav",
			"audio/mp3",
			"audio/aac",
		},
	})
}

// NewPolicy 以 table 的副本构建 Policy，调用方之后对 table 的修改不会生效.
// CategoryAny 的条目会被忽略.
func NewPolicy(table map[Category][]string) *Policy {
	p := &Policy{table: make(map[Category][]string, len(table))}

	for c, list := range table {
		if c == CategoryAny {
			continue
		}

		normalized := make([]string, 0, len(list))
		for _, m := range list {
			normalized = append(normalized, NormalizeMIME(m))
		}

		p.table[c] = normalized
	}

	return p
}

// Allowed 返回分类的有序白名单副本，CategoryAny 与未知分类返回空切片.
func (p *Policy) Allowed(c Category) []string {
	return slices.Clone(p.table[c])
}

// Permits 判断 mimeType 是否允许上传到分类 c.
func (p *Policy) Permits(c Category, mimeType string) bool {
	if c == CategoryAny {
		return true
	}

	return slices.Contains(p.table[c], NormalizeMIME(mimeType))
}

// NormalizeMIME 去掉参数并转小写，"Text/Plain; charset=utf-8" -> "text/plain".
func NormalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	return strings.ToLower(strings.TrimSpace(mimeType))
}

// PrimaryType 返回 MIME 类型 "/" 之前的部分，作为记录的 FileType.
func PrimaryType(mimeType string) string {
	m := NormalizeMIME(mimeType)
	if i := strings.IndexByte(m, '/'); i >= 0 {
		return m[:i]
	}

	return m
}
