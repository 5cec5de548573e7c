package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	// "hi" base64-encoded.
	contentType, payload, err := decodeDataURL("data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("hi"), payload)
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"https://example.com/image.png",
		"data:image/png;base64",
		"data:image/png,plain-not-base64",
		"data:image/png;base64,!!!",
	} {
		_, _, err := decodeDataURL(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "events/abc123/image", objectPath("abc123"))
}
