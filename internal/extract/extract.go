// Package extract converts uploaded document binaries into normalized text
// blocks suitable for inclusion in an audit prompt.
package extract

import (
	"fmt"
	"strings"

	"github.com/compliance-audit/backend/internal/models"
)

// Text produces the normalized text for one document file, dispatching on
// its inferred kind. Errors always identify the offending filename so a
// failed batch can be reported precisely.
func Text(file models.UploadedFile) (string, error) {
	var (
		text string
		err  error
	)
	switch file.Kind {
	case models.KindPDF:
		text, err = pdfText(file.Data)
	case models.KindSpreadsheet:
		text, err = spreadsheetText(file.Data)
	case models.KindWord:
		text, err = wordText(file.Data)
	case models.KindPlain:
		text = plainText(file.Data)
	case models.KindImage:
		err = fmt.Errorf("images carry no extractable text")
	default:
		err = fmt.Errorf("unsupported file kind %q", file.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return text, nil
}

// plainText decodes bytes as UTF-8, replacing invalid sequences. No other
// transformation is applied.
func plainText(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
