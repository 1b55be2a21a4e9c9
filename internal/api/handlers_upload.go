// handlers_upload.go - Batch file upload handler
package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/compliance-audit/backend/internal/batch"
	"github.com/compliance-audit/backend/internal/models"
	"github.com/compliance-audit/backend/internal/session"
)

// UploadHandlerImpl implements the UploadHandler interface.
type UploadHandlerImpl struct {
	sessions  *session.Manager
	processor *batch.Processor
}

// NewUploadHandler creates a new upload handler instance.
func NewUploadHandler(sessions *session.Manager, processor *batch.Processor) UploadHandler {
	return &UploadHandlerImpl{sessions: sessions, processor: processor}
}

// HandleUploadBatch accepts a multipart batch of files (field "files"),
// processes it atomically and commits the result to the session. Any
// single file failure aborts the whole batch; the session's corpus,
// evidence image and report are then left untouched.
func (h *UploadHandlerImpl) HandleUploadBatch(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return NewValidationError("files")
	}

	files := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return NewInternalError("failed to open uploaded file", err)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return NewInternalError("failed to read uploaded file", err)
		}
		files = append(files, models.NewUploadedFile(fh.Filename, data))
	}

	if err := h.sessions.BeginBatch(id); err != nil {
		return mapSessionError(err, id)
	}

	result, err := h.processor.Run(c.Request().Context(), files)
	if err != nil {
		h.sessions.FailBatch(id, err)
		return NewBadRequestError("batch processing failed", err)
	}

	if err := h.sessions.CommitBatch(id, result.Text, result.Evidence); err != nil {
		return mapSessionError(err, id)
	}

	corpus, err := h.sessions.Corpus(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, models.BatchSummary{
		Documents:   result.Documents,
		Images:      result.Images,
		CorpusBytes: len(corpus),
		HasEvidence: result.Evidence != "",
	})
}
