package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/glebarez/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/model"
	"github.com/yeisme/filedock/pkg/internal/repository"
	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/storage/local"
	"github.com/yeisme/filedock/pkg/internal/upload"
	"github.com/yeisme/filedock/pkg/queue"
)

const uploadRoot = "/srv/uploads"

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fixture struct {
	fs    afero.Fs
	store *local.Store
	repo  repository.FileRepository
	svc   *service.FileService
	bus   *gochannel.GoChannel
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "service.db")

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(model.Models()...))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	// sqlite 单写者
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

func allEvents() configs.EventsConfig {
	return configs.EventsConfig{
		Enabled: true,
		File:    configs.FileEventsConfig{Stored: true, Deleted: true, Orphaned: true},
	}
}

func newFixture(t *testing.T, wrap func(repository.FileRepository) repository.FileRepository) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	store := local.New(fs, local.Config{Root: uploadRoot, BaseURL: "http://localhost:8080", RouteSegment: "files"})

	var repo repository.FileRepository = repository.NewFileRepository(newTestDB(t))
	if wrap != nil {
		repo = wrap(repo)
	}

	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	svc := service.NewFileService(service.Deps{
		Store:         store,
		Repo:          repo,
		Publisher:     bus,
		Events:        allEvents(),
		DefaultPrefix: "file",
	})

	return &fixture{fs: fs, store: store, repo: repo, svc: svc, bus: bus}
}

// failingCreate 模拟数据库写入失败.
type failingCreate struct {
	repository.FileRepository
}

func (failingCreate) Create(context.Context, *model.FileRecord) error {
	return errs.Persistence("failed to create file record", fmt.Errorf("disk full"))
}

func TestUpload_TextRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u@example.com",
		upload.FromBytes("notes.txt", "text/plain", []byte("0123456789")),
		service.UploadOptions{Category: upload.CategoryDocument, Prefix: "doc"})
	require.NoError(t, err)

	assert.Equal(t, int64(10), rec.Size)
	assert.Equal(t, "text", rec.FileType)
	assert.Equal(t, "text/plain", rec.MimeType)
	assert.Equal(t, "notes.txt", rec.OriginalFilename)
	assert.Equal(t, "u@example.com", rec.UploadedBy)
	assert.Equal(t, "http://localhost:8080/files/"+rec.Filename, rec.URL)
	assert.Len(t, rec.ID, 26)

	byID, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Filename, byID.Filename)

	byName, err := f.svc.GetByFilename(ctx, rec.Filename)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byName.ID)

	onDisk, err := afero.ReadFile(f.fs, rec.Path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(onDisk))
}

func TestUpload_DefaultPrefixAndCategory(t *testing.T) {
	f := newFixture(t, nil)

	rec, err := f.svc.Upload(context.Background(), "",
		upload.FromBytes("me.png", "image/png", pngHeader), service.UploadOptions{})
	require.NoError(t, err)

	assert.Regexp(t, `^file-[0-9a-f-]{36}\.png$`, rec.Filename)
	assert.Equal(t, "image", rec.FileType)
}

func TestUpload_RejectedTypeWritesNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Upload(context.Background(), "u",
		upload.FromBytes("evil.png", "application/x-executable", []byte("MZ....")),
		service.UploadOptions{Category: upload.CategoryImage})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Contains(t, err.Error(), "unsupported file type: application/x-executable")

	entries, err := f.store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, total, err := f.svc.List(context.Background(), repository.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpload_SniffsUndeclaredType(t *testing.T) {
	f := newFixture(t, nil)

	rec, err := f.svc.Upload(context.Background(), "u",
		upload.FromBytes("blob", "application/octet-stream", pngHeader),
		service.UploadOptions{Category: upload.CategoryImage})
	require.NoError(t, err)
	assert.Equal(t, "image/png", rec.MimeType)
}

func TestUpload_NoFile(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Upload(context.Background(), "u", nil, service.UploadOptions{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestUpload_RecordFailureRemovesFile(t *testing.T) {
	f := newFixture(t, func(r repository.FileRepository) repository.FileRepository {
		return failingCreate{r}
	})

	_, err := f.svc.Upload(context.Background(), "u",
		upload.FromBytes("a.txt", "text/plain", []byte("x")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindPersistence))
	assert.Equal(t, "internal server error", errs.PublicMessage(err))

	entries, err := f.store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ConcurrentSameNameDistinctFiles(t *testing.T) {
	f := newFixture(t, nil)

	const n = 16

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = map[string]struct{}{}
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			rec, err := f.svc.Upload(context.Background(), "u",
				upload.FromBytes("same.txt", "text/plain", []byte{byte('a' + i)}),
				service.UploadOptions{Category: upload.CategoryAny})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			names[rec.Filename] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()
	assert.Len(t, names, n)

	_, total, err := f.svc.List(context.Background(), repository.ListQuery{PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)
}

func TestUpload_PublishesStoredEvent(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := f.bus.Subscribe(ctx, queue.TopicFileStored)
	require.NoError(t, err)

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("a.txt", "text/plain", []byte("hello")),
		service.UploadOptions{Category: upload.CategoryDocument})
	require.NoError(t, err)

	select {
	case msg := <-ch:
		env, err := queue.ParseFileStored(msg)
		require.NoError(t, err)
		msg.Ack()

		assert.Equal(t, rec.ID, env.Payload.File.ID)
		assert.Equal(t, string(upload.CategoryDocument), env.Payload.Category)
		assert.Equal(t, "filedock", env.Header.Producer)
	case <-ctx.Done():
		t.Fatal("stored event not published")
	}
}

func TestRemove_ThenNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("a.txt", "text/plain", []byte("x")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	out, err := f.svc.Remove(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.True(t, out.PhysicalDeleteSucceeded)
	assert.False(t, out.FileMissing)
	assert.Empty(t, out.PhysicalError)
	assert.Equal(t, rec.ID, out.File.ID)

	_, err = f.svc.Get(ctx, rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	ok, err := afero.Exists(f.fs, rec.Path)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.Remove(ctx, "admin", rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

// rendezvousRepo 让两次 FindByID 都读到记录后再继续，使两个删除在 Delete 处相遇.
type rendezvousRepo struct {
	repository.FileRepository
	arrived sync.WaitGroup
}

func (r *rendezvousRepo) FindByID(ctx context.Context, id string) (*model.FileRecord, error) {
	rec, err := r.FileRepository.FindByID(ctx, id)

	r.arrived.Done()
	r.arrived.Wait()

	return rec, err
}

func TestRemove_ConcurrentSameID(t *testing.T) {
	var base repository.FileRepository

	f := newFixture(t, func(next repository.FileRepository) repository.FileRepository {
		base = next
		gate := &rendezvousRepo{FileRepository: next}
		gate.arrived.Add(2)

		return gate
	})
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("twice.txt", "text/plain", []byte("x")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errC = make(chan error, 2)
	)

	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.svc.Remove(ctx, "admin", rec.ID)
			errC <- err
		}()
	}

	wg.Wait()
	close(errC)

	var ok, notFound int

	for err := range errC {
		switch {
		case err == nil:
			ok++
		case errs.Is(err, errs.KindNotFound):
			notFound++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)

	_, err = base.FindByID(ctx, rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	exists, err := afero.Exists(f.fs, rec.Path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRemove_UnknownIDTouchesNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("keep.txt", "text/plain", []byte("keep")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	_, err = f.svc.Remove(ctx, "admin", model.NewID())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	entries, err := f.store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rec.Filename, entries[0].Name)
}

func TestRemove_MissingFileStillDeletesRecord(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("a.txt", "text/plain", []byte("x")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)
	require.NoError(t, f.fs.Remove(rec.Path))

	out, err := f.svc.Remove(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.True(t, out.PhysicalDeleteSucceeded)
	assert.True(t, out.FileMissing)

	_, err = f.svc.Get(ctx, rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestRemove_PhysicalFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("a.txt", "text/plain", []byte("x")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	ro := service.NewFileService(service.Deps{
		Store: local.New(afero.NewReadOnlyFs(f.fs), local.Config{Root: uploadRoot, BaseURL: "http://h", RouteSegment: "files"}),
		Repo:  f.repo,
	})

	out, err := ro.Remove(ctx, "admin", rec.ID)
	require.NoError(t, err)
	assert.False(t, out.PhysicalDeleteSucceeded)
	assert.NotEmpty(t, out.PhysicalError)

	_, err = f.svc.Get(ctx, rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestOpen(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("a.txt", "text/plain", []byte("hello")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	got, file, info, err := f.svc.Open(ctx, rec.Filename)
	require.NoError(t, err)

	defer file.Close()

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, int64(5), info.Size())

	_, _, _, err = f.svc.Open(ctx, "nope.txt")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
