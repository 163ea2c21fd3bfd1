package upload

import (
	"github.com/dustin/go-humanize"

	"github.com/yeisme/filedock/pkg/internal/errs"
)

// DefaultMaxSize 单个上传文件的默认大小上限（10 MiB）.
const DefaultMaxSize int64 = 10 << 20

// Validator 在任何字节写入永久存储之前校验上传文件.
type Validator struct {
	policy  *Policy
	maxSize int64
}

// NewValidator 创建校验器，maxSize <= 0 表示使用 DefaultMaxSize.
func NewValidator(policy *Policy, maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Validator{policy: policy, maxSize: maxSize}
}

// Policy 返回校验器使用的白名单.
func (v *Validator) Policy() *Policy {
	return v.policy
}

// MaxSize 返回大小上限.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate 当 category 为 any 或 mimeType 在白名单中时通过.
func (v *Validator) Validate(mimeType string, category Category) error {
	if v.policy.Permits(category, mimeType) {
		return nil
	}

	return errs.Validation("unsupported file type: %s", mimeType)
}

// ValidateSize 检查文件大小.
func (v *Validator) ValidateSize(size int64) error {
	if size > v.maxSize {
		return errs.Validation("file too large: %s exceeds limit of %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(v.maxSize)))
	}

	return nil
}

// Check 依次校验文件是否存在、大小与 MIME 类型.
func (v *Validator) Check(t *Transient, category Category) error {
	if t == nil {
		return errs.Validation("no file uploaded")
	}

	if !t.HasSource() {
		return errs.Validation("uploaded file has neither buffer nor path")
	}

	if err := v.ValidateSize(t.Size); err != nil {
		return err
	}

	return v.Validate(t.MimeType, category)
}
