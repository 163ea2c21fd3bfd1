package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/configs"
	"github.com/yeisme/filedock/pkg/internal/model"
	"github.com/yeisme/filedock/pkg/internal/storage/db"
)

func TestNew_SQLiteMigrate(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "filedock"),
		MaxIdleConns: 1,
	}

	client, err := db.New(ctx, cfg, db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Migrate(ctx))
	require.NoError(t, client.Ping(ctx))

	assert.True(t, client.Migrator().HasTable(&model.FileRecord{}))
	assert.True(t, client.Migrator().HasIndex(&model.FileRecord{}, "Filename"))
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := db.New(context.Background(), &configs.DBConfig{Type: "oracle", Database: "x"}, db.Options{})
	require.Error(t, err)
}

func TestRegisteredTypes(t *testing.T) {
	types := db.GetRegisteredDBTypes()
	assert.Contains(t, types, configs.SQLite)
	assert.Contains(t, types, configs.Postgres)
	assert.Contains(t, types, configs.MySQL)
}
