package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/filedock/pkg/internal/errs"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":   {errs.Validation("unsupported file type: %s", "x/y"), http.StatusBadRequest},
		"not found":    {errs.NotFound("file %s not found", "1"), http.StatusNotFound},
		"persistence":  {errs.Persistence("insert failed", errors.New("disk full")), http.StatusInternalServerError},
		"physical io":  {errs.PhysicalIO("write failed", errors.New("eio")), http.StatusInternalServerError},
		"unauthorized": {errs.Unauthorized("missing identity"), http.StatusUnauthorized},
		"forbidden":    {errs.Forbidden("role user not allowed"), http.StatusForbidden},
		"rate limited": {errs.RateLimited("slow down"), http.StatusTooManyRequests},
		"plain":        {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, errs.HTTPStatus(tc.err))
		})
	}
}

func TestKindThroughWrapping(t *testing.T) {
	base := errs.NotFound("file %s not found", "abc")
	wrapped := fmt.Errorf("remove: %w", base)

	assert.True(t, errs.Is(wrapped, errs.KindNotFound))
	assert.False(t, errs.Is(wrapped, errs.KindValidation))
	assert.False(t, errs.Is(nil, errs.KindNotFound))
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := errs.Persistence("failed to create file record", errors.New("pq: duplicate key"))

	assert.Equal(t, "internal server error", errs.PublicMessage(err))
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Equal(t, "unsupported file type: a/b", errs.PublicMessage(errs.Validation("unsupported file type: %s", "a/b")))
}
