package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/internal/service"
	"github.com/yeisme/filedock/pkg/internal/upload"
	"github.com/yeisme/filedock/pkg/queue"
)

func writeAged(t *testing.T, fs afero.Fs, name string, age time.Duration) string {
	t.Helper()

	p := filepath.Join(uploadRoot, name)
	require.NoError(t, afero.WriteFile(fs, p, []byte("orphan"), 0o644))

	old := time.Now().Add(-age)
	require.NoError(t, fs.Chtimes(p, old, old))

	return p
}

func TestSweeper_Run(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	kept, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("kept.txt", "text/plain", []byte("kept")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)

	dangling, err := f.svc.Upload(ctx, "u",
		upload.FromBytes("gone.txt", "text/plain", []byte("gone")),
		service.UploadOptions{Category: upload.CategoryAny})
	require.NoError(t, err)
	require.NoError(t, f.fs.Remove(dangling.Path))

	oldOrphan := writeAged(t, f.fs, "old-orphan.bin", 2*time.Hour)
	freshOrphan := writeAged(t, f.fs, "fresh-orphan.bin", time.Minute)

	sweeper := service.NewSweeper(f.store, f.repo, nil, allEvents())

	t.Run("dry run reports without removing", func(t *testing.T) {
		report, err := sweeper.Run(ctx, service.SweepOptions{Grace: time.Hour, DryRun: true})
		require.NoError(t, err)

		assert.True(t, report.DryRun)
		assert.Equal(t, 2, report.Records)
		require.Len(t, report.OrphanFiles, 1)
		assert.Equal(t, "old-orphan.bin", report.OrphanFiles[0].Filename)
		assert.False(t, report.OrphanFiles[0].Removed)

		ok, err := afero.Exists(f.fs, oldOrphan)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("removes old orphans only", func(t *testing.T) {
		report, err := sweeper.Run(ctx, service.SweepOptions{Grace: time.Hour})
		require.NoError(t, err)

		require.Len(t, report.OrphanFiles, 1)
		assert.True(t, report.OrphanFiles[0].Removed)
		assert.Equal(t, int64(len("orphan")), report.ReclaimedBytes)

		require.Len(t, report.DanglingRecords, 1)
		assert.Equal(t, dangling.ID, report.DanglingRecords[0].ID)
		assert.False(t, report.DanglingRecords[0].Removed)

		ok, err := afero.Exists(f.fs, oldOrphan)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = afero.Exists(f.fs, freshOrphan)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = afero.Exists(f.fs, kept.Path)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Contains(t, report.Summary(), "1 orphan files")
	})
}

func TestSweeper_PublishesOrphanEvents(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := f.bus.Subscribe(ctx, queue.TopicFileOrphaned)
	require.NoError(t, err)

	writeAged(t, f.fs, "stray.bin", 3*time.Hour)

	_, err = service.NewSweeper(f.store, f.repo, f.bus, allEvents()).
		Run(ctx, service.SweepOptions{Grace: time.Hour, DryRun: true})
	require.NoError(t, err)

	select {
	case msg := <-ch:
		env, err := queue.ParseFileOrphaned(msg)
		require.NoError(t, err)
		msg.Ack()

		assert.Equal(t, queue.OrphanFile, env.Payload.Kind)
		assert.Equal(t, "stray.bin", env.Payload.File.Filename)
		assert.True(t, env.Payload.DryRun)
	case <-ctx.Done():
		t.Fatal("orphan event not published")
	}
}
