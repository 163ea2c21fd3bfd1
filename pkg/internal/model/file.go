// Package model 定义持久化实体.
package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid"
	"gorm.io/gorm"
)

// FileRecord 已存储文件的元数据. 记录创建后不可修改，只能整体删除.
type FileRecord struct {
	// ID 创建时分配的 ULID
	ID string `gorm:"primaryKey;size:26" json:"id"`
	// Filename 生成的存储文件名 <prefix>-<uuid><ext>
	Filename string `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	// OriginalFilename 客户端提供的文件名，仅作展示
	OriginalFilename string `gorm:"size:512"           json:"original_filename"`
	Path             string `gorm:"size:1024;not null" json:"path"`
	URL              string `gorm:"size:2048;not null" json:"url"`
	MimeType         string `gorm:"size:255;index"     json:"mime_type"`
	// FileType MIME 主类型，例如 image、text
	FileType   string    `gorm:"size:64;index" json:"file_type"`
	Size       int64     `json:"size"`
	Checksum   string    `gorm:"size:16"       json:"checksum"`
	UploadedBy string    `gorm:"size:255;index" json:"uploaded_by,omitempty"`
	CreatedAt  time.Time `gorm:"index"         json:"created_at"`
}

// TableName 指定表名.
func (FileRecord) TableName() string {
	return "file_records"
}

// BeforeCreate 未指定 ID 时生成 ULID.
func (f *FileRecord) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	return nil
}

// NewID 生成新的 ULID 字符串.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Models 返回需要自动迁移的模型.
func Models() []any {
	return []any{&FileRecord{}}
}
