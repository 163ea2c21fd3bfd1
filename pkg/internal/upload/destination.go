package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const maxExtLen = 16

// ResolveDirectory 确保目录存在（递归创建）并返回其路径. 并发调用安全，已存在时不报错.
func ResolveDirectory(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("upload directory is empty")
	}

	if err := fs.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", path, err)
	}

	return path, nil
}

// GenerateFilename 生成 <prefix>-<uuid><ext>，prefix 为空时生成 <uuid><ext>.
// 每次调用生成新的 UUIDv4，不检查磁盘上是否已存在同名文件.
func GenerateFilename(prefix, originalName string) string {
	token := uuid.NewString()
	ext := safeExt(originalName)

	prefix = sanitizePrefix(prefix)
	if prefix == "" {
		return token + ext
	}

	return prefix + "-" + token + ext
}

// safeExt 只保留由字母数字组成的扩展名，原始文件名不可信.
func safeExt(originalName string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, `\`, "/")))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}

	for _, r := range ext[1:] {
		if !isAlnum(r) {
			return ""
		}
	}

	return ext
}

func sanitizePrefix(prefix string) string {
	var b strings.Builder

	for _, r := range strings.TrimSpace(prefix) {
		if isAlnum(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
