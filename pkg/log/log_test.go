package log_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/filedock/pkg/log"
)

func TestGinWriter(t *testing.T) {
	var buf bytes.Buffer

	l := zerolog.New(&buf)
	w := log.NewGinWriter(&l, zerolog.WarnLevel)

	n, err := w.Write([]byte("[WARNING] Running in \"debug\" mode\n"))
	assert.NoError(t, err)
	assert.Equal(t, 34, n)
	assert.JSONEq(t, `{"level":"warn","component":"gin","message":"[WARNING] Running in \"debug\" mode"}`, buf.String())

	buf.Reset()

	_, _ = w.Write([]byte("   \n"))
	assert.Empty(t, buf.String())
}
