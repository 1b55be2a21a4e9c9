// handlers_audit.go - Audit invocation and report handlers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/compliance-audit/backend/internal/models"
	"github.com/compliance-audit/backend/internal/session"
)

// AuditHandlerImpl implements the AuditHandler interface.
type AuditHandlerImpl struct {
	sessions *session.Manager
	runner   AuditRunner
	log      *slog.Logger
}

// NewAuditHandler creates a new audit handler instance.
func NewAuditHandler(sessions *session.Manager, runner AuditRunner, logger *slog.Logger) AuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandlerImpl{sessions: sessions, runner: runner, log: logger}
}

// HandleStartAudit validates the inputs, marks the session as auditing and
// runs the external call in the background. Empty regulation or scenario
// text is rejected before any external call is made. A second audit or a
// file batch is refused while one is in flight.
func (h *AuditHandlerImpl) HandleStartAudit(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req startAuditRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	corpus, err := h.sessions.Corpus(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	if strings.TrimSpace(corpus) == "" {
		return NewValidationError("regulationText")
	}
	if strings.TrimSpace(req.Scenario) == "" {
		return NewValidationError("scenarioText")
	}

	if err := h.sessions.BeginAudit(id); err != nil {
		return mapSessionError(err, id)
	}

	go h.runAudit(id, corpus, req.Scenario, req.EnableWebSearch)

	return c.JSON(http.StatusAccepted, map[string]any{
		"phase": models.PhaseAuditing,
	})
}

// runAudit performs the external call and settles the session exactly once.
func (h *AuditHandlerImpl) runAudit(id, regulation, scenario string, webSearch bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("audit.panic", "session", id, "panic", r)
			h.sessions.FailAudit(id, "audit failed unexpectedly")
		}
	}()

	report, err := h.runner.Run(context.Background(), regulation, scenario, webSearch)
	if err != nil {
		h.log.Warn("audit.failed", "session", id, "error", err)
		h.sessions.FailAudit(id, err.Error())
		return
	}
	h.sessions.CompleteAudit(id, report)
}

// HandleGetReport returns the audit phase plus, when settled, the report
// or the failure message. While an audit is in flight no report is
// surfaced, so the caller's idle / loading / has-result states never
// overlap.
func (h *AuditHandlerImpl) HandleGetReport(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"phase":     snap.Phase,
		"report":    snap.Report,
		"lastError": snap.LastError,
	})
}

type startAuditRequest struct {
	Scenario        string `json:"scenario"`
	EnableWebSearch bool   `json:"enableWebSearch"`
}
