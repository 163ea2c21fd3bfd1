package upload_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filedock/pkg/internal/errs"
	"github.com/yeisme/filedock/pkg/internal/upload"
)

func TestValidator_ValidateMembership(t *testing.T) {
	p := upload.DefaultPolicy()
	v := upload.NewValidator(p, 0)

	for _, c := range upload.Categories() {
		if c == upload.CategoryAny {
			continue
		}

		for _, m := range p.Allowed(c) {
			assert.NoError(t, v.Validate(m, c), "%s/%s", c, m)
		}

		err := v.Validate("application/x-executable", c)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindValidation))
		assert.Equal(t, "unsupported file type: application/x-executable", errs.PublicMessage(err))
	}

	assert.NoError(t, v.Validate("application/x-executable", upload.CategoryAny))
	assert.NoError(t, v.Validate("", upload.CategoryAny))
}

func TestValidator_Size(t *testing.T) {
	v := upload.NewValidator(upload.DefaultPolicy(), 0)
	assert.Equal(t, upload.DefaultMaxSize, v.MaxSize())

	require.NoError(t, v.ValidateSize(upload.DefaultMaxSize))

	err := v.ValidateSize(upload.DefaultMaxSize + 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 MiB")
}

func TestValidator_Check(t *testing.T) {
	v := upload.NewValidator(upload.DefaultPolicy(), 16)

	assert.True(t, errs.Is(v.Check(nil, upload.CategoryAny), errs.KindValidation))
	assert.True(t, errs.Is(v.Check(&upload.Transient{MimeType: "text/plain"}, upload.CategoryAny), errs.KindValidation))

	big := upload.FromBytes("a.txt", "text/plain", make([]byte, 17))
	assert.True(t, errs.Is(v.Check(big, upload.CategoryDocument), errs.KindValidation))

	ok := upload.FromBytes("a.txt", "text/plain", []byte("0123456789"))
	assert.NoError(t, v.Check(ok, upload.CategoryDocument))
}

func TestTransient_DetectMIME(t *testing.T) {
	fs := afero.NewMemMapFs()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	tr := upload.FromBytes("pixel", "application/octet-stream", png)
	require.NoError(t, tr.DetectMIME(fs))
	assert.Equal(t, "image/png", tr.MimeType)

	require.NoError(t, afero.WriteFile(fs, "/tmp/staged", []byte("hello world"), 0o600))
	staged := &upload.Transient{OriginalName: "hello", Path: "/tmp/staged", Size: 11}
	require.NoError(t, staged.DetectMIME(fs))
	assert.Equal(t, "text/plain", staged.MimeType)

	declared := upload.FromBytes("x.png", "image/png", []byte("not really png"))
	require.NoError(t, declared.DetectMIME(fs))
	assert.Equal(t, "image/png", declared.MimeType)
}
