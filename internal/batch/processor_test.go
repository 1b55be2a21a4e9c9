package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance-audit/backend/internal/models"
)

func txt(name, content string) models.UploadedFile {
	return models.NewUploadedFile(name, []byte(content))
}

func png(name string) models.UploadedFile {
	return models.NewUploadedFile(name, []byte{0x89, 'P', 'N', 'G'})
}

func TestRun_DocumentsInInputOrder(t *testing.T) {
	p := NewProcessor(nil)
	res, err := p.Run(context.Background(), []models.UploadedFile{
		txt("b.txt", "second file"),
		txt("a.txt", "first file"),
		txt("c.txt", "third file"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Documents)
	assert.Equal(t, 0, res.Images)

	// Output order follows input order, not filename order.
	bi := strings.Index(res.Text, "===== BEGIN FILE: b.txt =====")
	ai := strings.Index(res.Text, "===== BEGIN FILE: a.txt =====")
	ci := strings.Index(res.Text, "===== BEGIN FILE: c.txt =====")
	assert.True(t, bi >= 0 && bi < ai && ai < ci, "blocks out of input order:\n%s", res.Text)
}

func TestRun_BoundaryMarkers(t *testing.T) {
	p := NewProcessor(nil)
	res, err := p.Run(context.Background(), []models.UploadedFile{
		txt("rules.txt", "No smoking."),
	})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "===== BEGIN FILE: rules.txt =====\n")
	assert.Contains(t, res.Text, "No smoking.\n")
	assert.Contains(t, res.Text, "===== END FILE: rules.txt =====\n")
}

func TestRun_LastImageWins(t *testing.T) {
	p := NewProcessor(nil)
	res, err := p.Run(context.Background(), []models.UploadedFile{
		png("first.png"),
		txt("doc.txt", "text"),
		png("second.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Images)
	assert.Equal(t, 1, res.Documents)
	// Both images encode to the same payload here, so distinguish by
	// running again with distinct bytes.
	res2, err := p.Run(context.Background(), []models.UploadedFile{
		models.NewUploadedFile("first.png", []byte("AAA")),
		models.NewUploadedFile("second.png", []byte("BBB")),
	})
	require.NoError(t, err)
	assert.Contains(t, res2.Evidence, "QkJC") // base64("BBB")
}

func TestRun_MixedBatchOrderIndependent(t *testing.T) {
	p := NewProcessor(nil)

	imageFirst, err := p.Run(context.Background(), []models.UploadedFile{
		png("shot.png"), txt("doc.txt", "body"),
	})
	require.NoError(t, err)
	docFirst, err := p.Run(context.Background(), []models.UploadedFile{
		txt("doc.txt", "body"), png("shot.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, imageFirst.Text, docFirst.Text)
	assert.Equal(t, imageFirst.Evidence, docFirst.Evidence)
	assert.NotEmpty(t, imageFirst.Evidence)
	assert.Contains(t, imageFirst.Text, "===== BEGIN FILE: doc.txt =====")
}

func TestRun_FailFastNamesFile(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.Run(context.Background(), []models.UploadedFile{
		txt("good.txt", "fine"),
		models.NewUploadedFile("corrupt.pdf", []byte("not really a pdf")),
		txt("never.txt", "fine too"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt.pdf")
}

func TestRun_FailureReturnsNothing(t *testing.T) {
	boom := errors.New("exploded")
	calls := 0
	p := NewProcessorWithExtract(func(f models.UploadedFile) (string, error) {
		calls++
		if f.Name == "bad.txt" {
			return "", fmt.Errorf("extract %s: %w", f.Name, boom)
		}
		return "ok", nil
	}, nil)

	res, err := p.Run(context.Background(), []models.UploadedFile{
		txt("fine.txt", "x"),
		txt("bad.txt", "y"),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestRun_EmptyBatch(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRun_ImagesOnly(t *testing.T) {
	p := NewProcessor(nil)
	res, err := p.Run(context.Background(), []models.UploadedFile{png("only.png")})
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.NotEmpty(t, res.Evidence)
	assert.True(t, strings.HasPrefix(res.Evidence, "data:image/png;base64,"))
}
