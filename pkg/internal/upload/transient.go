package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/yeisme/filedock/pkg/internal/errs"
)

const octetStream = "application/octet-stream"

// Transient 请求中暂存的上传文件，内容在内存 Buffer 或磁盘 Path 二者之一.
type Transient struct {
	OriginalName string
	MimeType     string
	Size         int64
	Buffer       []byte
	Path         string
}

// FromBytes 以内存内容构建 Transient.
func FromBytes(originalName, mimeType string, data []byte) *Transient {
	return &Transient{
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		Buffer:       data,
	}
}

// FromFileHeader 从 multipart 表单文件构建 Transient.
// 超过内存阈值的文件已被 net/http 暂存到磁盘，此时只记录其路径.
func FromFileHeader(fh *multipart.FileHeader) (*Transient, error) {
	if fh == nil {
		return nil, errs.Validation("no file uploaded")
	}

	t := &Transient{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open multipart file: %w", err)
	}
	defer f.Close()

	if osf, ok := f.(*os.File); ok {
		t.Path = osf.Name()

		return t, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart file: %w", err)
	}

	t.Buffer = data
	t.Size = int64(len(data))

	return t, nil
}

// HasSource 是否有可读取的内容.
func (t *Transient) HasSource() bool {
	return t.Buffer != nil || t.Path != ""
}

// Open 打开内容，Buffer 优先.
func (t *Transient) Open(fs afero.Fs) (io.ReadCloser, error) {
	if t.Buffer != nil {
		return io.NopCloser(bytes.NewReader(t.Buffer)), nil
	}

	if t.Path == "" {
		return nil, fmt.Errorf("transient file has neither buffer nor path")
	}

	return fs.Open(t.Path)
}

// DetectMIME 客户端未声明类型或声明为 application/octet-stream 时，按内容嗅探类型.
func (t *Transient) DetectMIME(fs afero.Fs) error {
	if t.MimeType != "" && NormalizeMIME(t.MimeType) != octetStream {
		return nil
	}

	if !t.HasSource() {
		return nil
	}

	r, err := t.Open(fs)
	if err != nil {
		return err
	}
	defer r.Close()

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return fmt.Errorf("failed to detect mime type: %w", err)
	}

	t.MimeType = NormalizeMIME(detected.String())

	return nil
}
