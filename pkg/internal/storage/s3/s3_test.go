package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClient_ObjectKey(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "avatar-1.png", c.ObjectKey("avatar-1.png"))

	c.keyPrefix = "mirror/uploads"
	assert.Equal(t, "mirror/uploads/avatar-1.png", c.ObjectKey("avatar-1.png"))
}
