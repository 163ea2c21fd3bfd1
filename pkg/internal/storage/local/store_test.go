package local_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	"github.com/yeisme/filedock/pkg/internal/upload"
)

const root = "/srv/uploads"

func newStore(fs afero.Fs) *local.Store {
	return local.New(fs, local.Config{
		Root:         root,
		BaseURL:      "http://localhost:8080/",
		RouteSegment: "files",
	})
}

func TestStore_BufferRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)

	content := []byte("0123456789")

	got, err := s.Store(context.Background(), upload.FromBytes("notes.txt", "text/plain", content), "doc")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.Filename, "doc-"))
	assert.True(t, strings.HasSuffix(got.Filename, ".txt"))
	assert.Equal(t, filepath.Join(root, got.Filename), got.Path)
	assert.Equal(t, "http://localhost:8080/files/"+got.Filename, got.URL)
	assert.Equal(t, int64(10), got.Size)
	assert.Equal(t, "text", got.FileType)
	assert.Equal(t, "notes.txt", got.OriginalFilename)
	assert.Equal(t, local.Checksum(content), got.Checksum)

	onDisk, err := afero.ReadFile(fs, got.Path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestStore_StagedPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/multipart-123", []byte("staged bytes"), 0o600))

	s := newStore(fs)
	tr := &upload.Transient{OriginalName: "a.csv", MimeType: "text/csv", Size: 12, Path: "/tmp/multipart-123"}

	got, err := s.Store(context.Background(), tr, "")
	require.NoError(t, err)

	onDisk, err := afero.ReadFile(fs, got.Path)
	require.NoError(t, err)
	assert.Equal(t, "staged bytes", string(onDisk))
	assert.Equal(t, int64(12), got.Size)
}

func TestStore_NoSource(t *testing.T) {
	s := newStore(afero.NewMemMapFs())

	_, err := s.Store(context.Background(), nil, "x")
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = s.Store(context.Background(), &upload.Transient{OriginalName: "a"}, "x")
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestStore_WriteFailureLeavesNothing(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll(root, 0o755))

	s := newStore(afero.NewReadOnlyFs(base))

	_, err := s.Store(context.Background(), upload.FromBytes("a.png", "image/png", []byte("x")), "img")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPhysicalIO))

	entries, err := afero.ReadDir(base, root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_CanceledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Store(ctx, upload.FromBytes("a.png", "image/png", []byte("x")), "img")
	require.Error(t, err)

	entries, _ := s.List()
	assert.Empty(t, entries)
}

func TestStore_ConcurrentSameName(t *testing.T) {
	dir := t.TempDir()
	s := local.New(nil, local.Config{Root: dir, BaseURL: "http://h", RouteSegment: "files"})

	const n = 8

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = map[string]string{}
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			body := []byte{byte('a' + i)}

			got, err := s.Store(context.Background(), upload.FromBytes("same.png", "image/png", body), "avatar")
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			names[got.Filename] = string(body)
			mu.Unlock()
		}()
	}

	wg.Wait()
	require.Len(t, names, n)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, n)

	for name, body := range names {
		b, err := afero.ReadFile(s.Fs(), filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, body, string(b))
	}
}

func TestStore_Remove(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)

	got, err := s.Store(context.Background(), upload.FromBytes("a.txt", "text/plain", []byte("x")), "f")
	require.NoError(t, err)

	res, err := s.Remove(got.Path)
	require.NoError(t, err)
	assert.False(t, res.Missing)

	ok, err := s.Exists(got.Path)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err = s.Remove(got.Path)
	require.NoError(t, err)
	assert.True(t, res.Missing)
}

func TestStore_RemoveFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	s := newStore(afero.NewReadOnlyFs(base))

	_, err := s.Remove(filepath.Join(root, "a.txt"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPhysicalIO))
}

func TestStore_Open(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(fs)

	got, err := s.Store(context.Background(), upload.FromBytes("a.txt", "text/plain", []byte("hello")), "f")
	require.NoError(t, err)

	f, info, err := s.Open(got.Filename)
	require.NoError(t, err)

	defer f.Close()

	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), info.Size())

	_, _, err = s.Open("../etc/passwd")
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, _, err = s.Open("missing.txt")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestStore_ListSkipsTemp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, ".upload-123"), []byte("partial"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, "kept.txt"), []byte("x"), 0o644))
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "sub"), 0o755))

	entries, err := newStore(fs).List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept.txt", entries[0].Name)
}

func TestStore_ListMissingRoot(t *testing.T) {
	entries, err := newStore(afero.NewMemMapFs()).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFormatChecksum(t *testing.T) {
	assert.Equal(t, "000000000000000f", local.FormatChecksum(15))
	assert.Len(t, local.Checksum([]byte("abc")), 16)
}
