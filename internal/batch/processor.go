// Package batch processes one atomic group of uploaded files: documents
// are extracted to text and reassembled in input order, images become the
// evidence candidate. A batch either succeeds completely or contributes
// nothing.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/compliance-audit/backend/internal/extract"
	"github.com/compliance-audit/backend/internal/imaging"
	"github.com/compliance-audit/backend/internal/models"
)

// Result is the outcome of one fully successful batch.
type Result struct {
	// Text holds every extracted document block, wrapped in file boundary
	// markers, in the order the files were supplied.
	Text string
	// Evidence is the data URL of the last image in the batch, or "" when
	// the batch contained no images.
	Evidence  string
	Documents int
	Images    int
}

// ExtractFunc converts one document file to text. Tests substitute the
// real extractor through it.
type ExtractFunc func(models.UploadedFile) (string, error)

// Processor runs upload batches.
type Processor struct {
	extract ExtractFunc
	log     *slog.Logger
}

// NewProcessor builds a Processor using the real text extractor.
func NewProcessor(logger *slog.Logger) *Processor {
	return NewProcessorWithExtract(extract.Text, logger)
}

// NewProcessorWithExtract builds a Processor with a custom extractor.
func NewProcessorWithExtract(fn ExtractFunc, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{extract: fn, log: logger}
}

// Run processes a batch. Documents are extracted concurrently but their
// text is reassembled in original input order. Any single file failure
// cancels the remaining work and Run returns only the error; callers must
// not commit anything from a failed batch.
func (p *Processor) Run(ctx context.Context, files []models.UploadedFile) (*Result, error) {
	if len(files) == 0 {
		return nil, errors.New("empty batch")
	}
	start := time.Now()

	blocks := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		if f.Kind == models.KindImage {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			text, err := p.extract(f)
			if err != nil {
				return err
			}
			blocks[i] = wrapBoundary(f.Name, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.log.Warn("batch.failed", "files", len(files), "error", err)
		return nil, err
	}

	res := &Result{}
	var corpus strings.Builder
	for i, f := range files {
		if f.Kind == models.KindImage {
			// Last image in input order wins.
			res.Evidence = imaging.DataURL(f.Name, f.Data)
			res.Images++
			continue
		}
		corpus.WriteString(blocks[i])
		res.Documents++
	}
	res.Text = corpus.String()

	p.log.Info("batch.complete",
		"documents", res.Documents,
		"images", res.Images,
		"bytes", len(res.Text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// wrapBoundary tags one file's extracted text with start/end markers so
// downstream readers can attribute spans of corpus text to their source.
func wrapBoundary(name, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "===== BEGIN FILE: %s =====\n", name)
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "===== END FILE: %s =====\n\n", name)
	return b.String()
}
