package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// spreadsheetText serializes every sheet of a workbook to CSV in workbook
// order, each prefixed with a sheet-name marker. encoding/csv handles
// escaping of embedded delimiters, quotes and newlines.
func spreadsheetText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		fmt.Fprintf(&out, "--- Sheet: %s ---\n", sheet)
		w := csv.NewWriter(&out)
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("serialize sheet %q: %w", sheet, err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("serialize sheet %q: %w", sheet, err)
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}
