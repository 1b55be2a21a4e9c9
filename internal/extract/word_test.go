package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const twoParagraphDoc = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Article 1. Scope</w:t></w:r></w:p>
    <w:p><w:r><w:t>Emissions shall not exceed</w:t></w:r><w:r><w:t xml:space="preserve"> 5 ppm.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestWordText_Paragraphs(t *testing.T) {
	got, err := wordText(buildDocx(t, twoParagraphDoc))
	require.NoError(t, err)

	assert.Contains(t, got, "Article 1. Scope\n")
	assert.Contains(t, got, "Emissions shall not exceed 5 ppm.\n")
}

func TestWordText_TabsAndBreaks(t *testing.T) {
	doc := `<w:document xmlns:w="x"><w:body>
<w:p><w:r><w:t>a</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>b</w:t></w:r><w:r><w:br/></w:r><w:r><w:t>c</w:t></w:r></w:p>
</w:body></w:document>`
	got, err := wordText(buildDocx(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "a\tb\nc\n", got)
}

func TestWordText_NotAZip(t *testing.T) {
	_, err := wordText([]byte("plain bytes, not a zip archive"))
	require.Error(t, err)
}

func TestWordText_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<styles/>"))
	require.NoError(t, zw.Close())

	_, err = wordText(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestWordText_MalformedXML(t *testing.T) {
	_, err := wordText(buildDocx(t, "<w:document><unclosed"))
	require.Error(t, err)
}
