package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMIMEForFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"shot.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"anim.webp", "image/webp"},
		{"mystery.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MIMEForFilename(tt.name), tt.name)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	u := DataURL("evidence.png", raw)

	assert.True(t, len(u) > len("data:image/png;base64,"))

	mimeType, data, err := ParseDataURL(u)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, raw, data)
}

func TestParseDataURL_Invalid(t *testing.T) {
	_, _, err := ParseDataURL("http://example.com/x.png")
	require.Error(t, err)

	_, _, err = ParseDataURL("data:image/png;base64")
	require.Error(t, err)

	_, _, err = ParseDataURL("data:image/png;base64,!!!not-base64!!!")
	require.Error(t, err)
}
