// Package local 将上传文件写入本地上传根目录（扁平目录，不分片）.
package local

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/upload"
	nlog "github.com/yeisme/filedock/pkg/log"
)

// tempPrefix 写入中的临时文件前缀，清理任务会跳过它们.
const tempPrefix = ".upload-"

// StoredFile 一次成功写入的结果，对应 FileRecord 中由存储层决定的字段.
type StoredFile struct {
	Filename         string
	OriginalFilename string
	Path             string
	URL              string
	MimeType         string
	FileType         string
	Size             int64
	Checksum         string
}

// RemoveResult 物理删除的结果. Missing 表示文件在删除前已不存在.
type RemoveResult struct {
	Missing bool
}

// Entry 上传目录中的一个文件.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store 本地文件存储.
type Store struct {
	fs      afero.Fs
	root    string
	baseURL string
	segment string
}

// Config 存储参数.
type Config struct {
	Root         string // 上传根目录绝对路径
	BaseURL      string // 对外服务地址
	RouteSegment string // 公开 URL 路由段
}

// New 创建存储，fs 为 nil 时使用操作系统文件系统.
func New(fs afero.Fs, cfg Config) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Store{
		fs:      fs,
		root:    filepath.Clean(cfg.Root),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		segment: strings.Trim(cfg.RouteSegment, "/"),
	}
}

// Fs 返回底层文件系统.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Root 返回上传根目录.
func (s *Store) Root() string {
	return s.root
}

// URLFor 返回文件的公开 URL.
func (s *Store) URLFor(filename string) string {
	return s.baseURL + "/" + s.segment + "/" + filename
}

// Store 将暂存文件写入上传目录. 先写同目录临时文件再重命名，失败时不留下任何文件.
func (s *Store) Store(ctx context.Context, t *upload.Transient, prefix string) (*StoredFile, error) {
	if t == nil {
		return nil, errs.Validation("no file uploaded")
	}

	if !t.HasSource() {
		return nil, errs.Validation("uploaded file has neither buffer nor path")
	}

	if err := ctx.Err(); err != nil {
		return nil, errs.PhysicalIO("upload aborted", err)
	}

	filename := upload.GenerateFilename(prefix, t.OriginalName)

	dir, err := upload.ResolveDirectory(s.fs, s.root)
	if err != nil {
		return nil, errs.PhysicalIO("failed to prepare upload directory", err)
	}

	src, err := t.Open(s.fs)
	if err != nil {
		return nil, errs.PhysicalIO("failed to read uploaded file", err)
	}
	defer src.Close()

	dest := filepath.Join(dir, filename)

	size, sum, err := s.writeAtomic(ctx, dir, dest, src)
	if err != nil {
		return nil, errs.PhysicalIO("failed to write file", err)
	}

	nlog.Logger().Debug().
		Str("filename", filename).
		Str("path", dest).
		Int64("size", size).
		Msg("file stored")

	return &StoredFile{
		Filename:         filename,
		OriginalFilename: t.OriginalName,
		Path:             dest,
		URL:              s.URLFor(filename),
		MimeType:         upload.NormalizeMIME(t.MimeType),
		FileType:         upload.PrimaryType(t.MimeType),
		Size:             size,
		Checksum:         sum,
	}, nil
}

func (s *Store) writeAtomic(ctx context.Context, dir, dest string, src io.Reader) (int64, string, error) {
	tmp, err := afero.TempFile(s.fs, dir, tempPrefix+"*")
	if err != nil {
		return 0, "", err
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	digest := xxhash.New()

	n, err := io.Copy(io.MultiWriter(tmp, digest), &ctxReader{ctx: ctx, r: src})
	if err != nil {
		return 0, "", err
	}

	if err := tmp.Sync(); err != nil {
		return 0, "", err
	}

	if err := tmp.Close(); err != nil {
		return 0, "", err
	}

	if err := s.fs.Rename(tmpName, dest); err != nil {
		return 0, "", err
	}

	committed = true

	return n, FormatChecksum(digest.Sum64()), nil
}

// Remove 删除物理文件，文件不存在不视为错误.
func (s *Store) Remove(path string) (RemoveResult, error) {
	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return RemoveResult{Missing: true}, nil
		}

		return RemoveResult{}, errs.PhysicalIO("failed to remove file", err)
	}

	return RemoveResult{}, nil
}

// Exists 判断路径上的文件是否存在.
func (s *Store) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Open 按文件名打开上传目录中的文件. 文件名不能包含路径分隔符.
func (s *Store) Open(filename string) (afero.File, iofs.FileInfo, error) {
	if !ValidFilename(filename) {
		return nil, nil, errs.Validation("invalid filename: %s", filename)
	}

	f, err := s.fs.Open(filepath.Join(s.root, filename))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil, errs.NotFound("file %s not found", filename)
	}

	if err != nil {
		return nil, nil, errs.PhysicalIO("failed to open file", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errs.PhysicalIO("failed to stat file", err)
	}

	return f, info, nil
}

// List 列出上传目录中的普通文件，跳过写入中的临时文件. 目录不存在时返回空列表.
func (s *Store) List() ([]Entry, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, errs.PhysicalIO("failed to list upload directory", err)
	}

	entries := make([]Entry, 0, len(infos))

	for _, info := range infos {
		if !info.Mode().IsRegular() || strings.HasPrefix(info.Name(), tempPrefix) {
			continue
		}

		entries = append(entries, Entry{
			Name:    info.Name(),
			Path:    filepath.Join(s.root, info.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return entries, nil
}

// ValidFilename 判断是否为上传目录中的合法文件名.
func ValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, tempPrefix) {
		return false
	}

	return !strings.ContainsAny(name, `/\`) && name == filepath.Base(name)
}

// FormatChecksum 以 16 位十六进制表示 xxhash64.
func FormatChecksum(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	if len(s) < 16 {
		s = strings.Repeat("0", 16-len(s)) + s
	}

	return s
}

// Checksum 计算内容的 xxhash64.
func Checksum(data []byte) string {
	return FormatChecksum(xxhash.Sum64(data))
}

// ctxReader 在 context 取消后停止读取.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
