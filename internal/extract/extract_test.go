package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance-audit/backend/internal/models"
)

func TestText_PlainPassthrough(t *testing.T) {
	f := models.NewUploadedFile("rules.txt", []byte("Rule 1: no smoking.\n"))
	got, err := Text(f)
	require.NoError(t, err)
	assert.Equal(t, "Rule 1: no smoking.\n", got)
}

func TestText_UnknownExtensionDecodesAsText(t *testing.T) {
	f := models.NewUploadedFile("rules.conf", []byte("limit=5"))
	got, err := Text(f)
	require.NoError(t, err)
	assert.Equal(t, "limit=5", got)
}

func TestText_InvalidUTF8Replaced(t *testing.T) {
	f := models.NewUploadedFile("raw.txt", []byte{0x68, 0x69, 0xff, 0xfe})
	got, err := Text(f)
	require.NoError(t, err)
	assert.Contains(t, got, "hi")
	assert.NotContains(t, got, "\xff")
}

func TestText_ErrorNamesFile(t *testing.T) {
	f := models.NewUploadedFile("broken.pdf", []byte("not a pdf at all"))
	_, err := Text(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestText_ImageHasNoText(t *testing.T) {
	f := models.NewUploadedFile("photo.png", []byte{0x89, 'P', 'N', 'G'})
	_, err := Text(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo.png")
}
