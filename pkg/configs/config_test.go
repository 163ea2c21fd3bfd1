package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/configs"
)

func TestLoad_MissingBaseURLFails(t *testing.T) {
	v := configs.NewViper()

	_, err := configs.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.base_url: is required")
}

func TestLoad_Defaults(t *testing.T) {
	v := configs.NewViper()
	v.Set("server.base_url", "http://localhost:8080")

	cfg, err := configs.Load(v)
	require.NoError(t, err)

	assert.Equal(t, configs.DefaultPort, cfg.Server.Port)
	assert.Equal(t, "files", cfg.Upload.RouteSegment)
	assert.Equal(t, configs.SQLite, cfg.DB.Type)
	assert.Equal(t, configs.KVTypeMemory, cfg.KV.Type)
	assert.Equal(t, configs.MQTypeGoChannel, cfg.MQ.Type)
	assert.Equal(t, time.Hour, cfg.Jobs.SweepGrace)
	assert.False(t, cfg.Mirror.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FILEDOCK_SERVER_BASE_URL", "https://cdn.example.com")
	t.Setenv("FILEDOCK_UPLOAD_ROUTE_SEGMENT", "uploads")

	cfg, err := configs.Load(configs.NewViper())
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "uploads", cfg.Upload.RouteSegment)
}

func TestLoad_InvalidRouteSegment(t *testing.T) {
	v := configs.NewViper()
	v.Set("server.base_url", "http://localhost:8080")
	v.Set("upload.route_segment", "a/b")

	_, err := configs.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload.route_segment")
}

func TestLoad_ReservedRouteSegment(t *testing.T) {
	for _, seg := range []string{"api", "swagger", "metrics"} {
		t.Run(seg, func(t *testing.T) {
			v := configs.NewViper()
			v.Set("server.base_url", "http://localhost:8080")
			v.Set("upload.route_segment", seg)

			_, err := configs.Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "upload.route_segment")
		})
	}
}

func TestLoad_RouteSegmentFollowsMetricsPath(t *testing.T) {
	v := configs.NewViper()
	v.Set("server.base_url", "http://localhost:8080")
	v.Set("metrics.path", "/internal/metrics")
	v.Set("upload.route_segment", "metrics")

	cfg, err := configs.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "metrics", cfg.Upload.RouteSegment)

	v.Set("upload.route_segment", "internal")

	_, err = configs.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicts with metrics.path")
}

func TestLoad_AuthDisabledRejected(t *testing.T) {
	v := configs.NewViper()
	v.Set("server.base_url", "http://localhost:8080")
	v.Set("auth.enabled", false)

	_, err := configs.Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.enabled")
}

func TestInitConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  base_url: http://files.local\n  reload_config: false\nupload:\n  root_dir: /srv/uploads\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	require.NoError(t, configs.InitConfig(dir))

	cfg := configs.GetConfig()
	assert.Equal(t, "http://files.local", cfg.Server.BaseURL)
	assert.Equal(t, "/srv/uploads", cfg.Upload.GetRootDir())
}

func TestServerConfig_PublicURL(t *testing.T) {
	cases := []struct {
		base, segment, want string
	}{
		{"http://h", "files", "http://h/files/a.png"},
		{"http://h/", "/files/", "http://h/files/a.png"},
		{"https://cdn.example.com/api", "uploads", "https://cdn.example.com/api/uploads/a.png"},
	}

	for _, tc := range cases {
		s := configs.ServerConfig{BaseURL: tc.base}
		assert.Equal(t, tc.want, s.PublicURL(tc.segment, "a.png"))
	}
}

func TestUploadConfig_GetRootDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	var c configs.UploadConfig
	assert.Equal(t, filepath.Join(cwd, "uploads"), c.GetRootDir())

	c.RootDir = "data/files"
	assert.Equal(t, filepath.Join(cwd, "data/files"), c.GetRootDir())
}
