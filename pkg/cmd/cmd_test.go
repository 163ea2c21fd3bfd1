package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	return out.String()
}

func TestVersionSkipsConfig(t *testing.T) {
	out := run(t, "version")
	assert.Contains(t, out, "filedock ")
}

func TestListCommands(t *testing.T) {
	assert.Contains(t, run(t, "db", "ls"), "sqlite")
	assert.Contains(t, run(t, "kv", "ls"), "memory")
	assert.Contains(t, run(t, "mq", "ls"), "gochannel")
}

func TestBackendListMarksEffectiveDriver(t *testing.T) {
	t.Setenv("FILEDOCK_KV_TYPE", "redis")

	out := run(t, "kv", "ls")
	assert.Contains(t, out, " * redis\n")
	assert.Contains(t, out, "   memory\n")
}

func TestRedact(t *testing.T) {
	got := redact(map[string]any{
		"db":   map[string]any{"host": "localhost", "password": "hunter2"},
		"auth": map[string]any{"jwt_secret": "", "mode": "jwt"},
	})

	assert.Equal(t, map[string]any{
		"db":   map[string]any{"host": "localhost", "password": redacted},
		"auth": map[string]any{"jwt_secret": "", "mode": "jwt"},
	}, got)
}
