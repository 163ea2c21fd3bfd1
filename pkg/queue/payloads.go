package queue

import "time"

// EventHeader 所有事件的通用头部.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理时定位来源.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 负载版本.
	Version string `json:"version,omitempty"`
}

// Message 统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一个已存储文件.
type FileRef struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

// FileStoredPayload 文件写盘并入库.
type FileStoredPayload struct {
	File             FileRef `json:"file"`
	OriginalFilename string  `json:"original_filename,omitempty"`
	Category         string  `json:"category,omitempty"`
	UploadedBy       string  `json:"uploaded_by,omitempty"`
}

// FileDeletedPayload 文件记录删除.
type FileDeletedPayload struct {
	File                    FileRef `json:"file"`
	PhysicalDeleteSucceeded bool    `json:"physical_delete_succeeded"`
	FileMissing             bool    `json:"file_missing,omitempty"`
	PhysicalError           string  `json:"physical_error,omitempty"`
	DeletedBy               string  `json:"deleted_by,omitempty"`
}

// OrphanKind 孤儿类型.
type OrphanKind string

const (
	// OrphanFile 磁盘上存在但没有记录的文件.
	OrphanFile OrphanKind = "file"
	// OrphanRecord 记录存在但文件缺失.
	OrphanRecord OrphanKind = "record"
)

// FileOrphanedPayload 清理任务发现的不一致.
type FileOrphanedPayload struct {
	Kind     OrphanKind `json:"kind"`
	File     FileRef    `json:"file"`
	Removed  bool       `json:"removed"`
	DryRun   bool       `json:"dry_run,omitempty"`
	Error    string     `json:"error,omitempty"`
	Detected time.Time  `json:"detected"`
}
