// handlers_evidence.go - Evidence image slot handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/compliance-audit/backend/internal/session"
)

// EvidenceHandlerImpl implements the EvidenceHandler interface.
type EvidenceHandlerImpl struct {
	sessions *session.Manager
	editor   ImageEditor
}

// NewEvidenceHandler creates a new evidence handler instance. The editor
// may be nil when image editing is not configured.
func NewEvidenceHandler(sessions *session.Manager, editor ImageEditor) EvidenceHandler {
	return &EvidenceHandlerImpl{sessions: sessions, editor: editor}
}

// HandleClearEvidence empties the evidence image slot.
func (h *EvidenceHandlerImpl) HandleClearEvidence(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if err := h.sessions.ClearEvidence(id); err != nil {
		return mapSessionError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleEditEvidence sends the current evidence image and an instruction
// to the image model and replaces the slot with the edited result. A
// failed edit leaves the corpus, the evidence image and the report as
// they were.
func (h *EvidenceHandlerImpl) HandleEditEvidence(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if h.editor == nil {
		return NewServiceUnavailableError("image editing is not configured")
	}

	var req editEvidenceRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Instruction == "" {
		return NewValidationError("instruction")
	}

	current, err := h.sessions.Evidence(id)
	if err != nil {
		return mapSessionError(err, id)
	}

	edited, err := h.editor.Edit(c.Request().Context(), current, req.Instruction)
	if err != nil {
		return NewUpstreamError("image edit failed", err)
	}

	if err := h.sessions.ReplaceEvidence(id, edited); err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]any{"evidence": edited})
}

type editEvidenceRequest struct {
	Instruction string `json:"instruction"`
}
