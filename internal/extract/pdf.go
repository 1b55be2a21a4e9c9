package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// lineTolerance is the maximum vertical distance, in PDF user-space units,
// between two fragments still considered part of the same line.
const lineTolerance = 5.0

// columnSeparator joins fragments that share a line but arrive as separate
// positioned runs, so tabular columns stay distinguishable downstream.
const columnSeparator = " | "

type fragment struct {
	x, y float64
	text string
}

// pdfText reconstructs reading order from a PDF's absolutely-positioned
// text runs. PDFs store text without line or column semantics, so fragments
// are ordered top-to-bottom by y and left-to-right within a line, with page
// markers between pages.
func pdfText(data []byte) (text string, err error) {
	// The pdf library panics on some malformed inputs; surface those as
	// ordinary extraction errors so the whole batch fails cleanly.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var out strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		var frags []fragment
		for _, item := range page.Content().Text {
			if item.S == "" {
				continue
			}
			frags = append(frags, fragment{x: item.X, y: item.Y, text: item.S})
		}
		fmt.Fprintf(&out, "--- Page %d ---\n", pageNum)
		out.WriteString(layoutFragments(frags))
		out.WriteString("\n\n")
	}
	return out.String(), nil
}

// layoutFragments orders positioned text runs into lines. Fragments whose y
// coordinates differ by at most lineTolerance belong to the same line and
// are joined with the column separator; larger gaps start a new line.
func layoutFragments(frags []fragment) string {
	if len(frags) == 0 {
		return ""
	}

	sorted := make([]fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		diff := sorted[i].y - sorted[j].y
		if diff > lineTolerance || diff < -lineTolerance {
			// PDF y grows upward, so larger y means nearer the top.
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var out strings.Builder
	out.WriteString(sorted[0].text)
	prevY := sorted[0].y
	for _, f := range sorted[1:] {
		if gap := prevY - f.y; gap > lineTolerance || gap < -lineTolerance {
			out.WriteString("\n")
		} else {
			out.WriteString(columnSeparator)
		}
		out.WriteString(f.text)
		prevY = f.y
	}
	return out.String()
}
