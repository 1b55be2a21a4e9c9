// interfaces.go - Handler and collaborator interface definitions
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/compliance-audit/backend/internal/models"
)

// SessionHandler handles session lifecycle and corpus operations.
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleGetCorpus(c echo.Context) error
	HandleAppendCorpus(c echo.Context) error
	HandleSnapshotMsgpack(c echo.Context) error
}

// UploadHandler handles batch file uploads.
type UploadHandler interface {
	HandleUploadBatch(c echo.Context) error
}

// AuditHandler handles audit invocation and report retrieval.
type AuditHandler interface {
	HandleStartAudit(c echo.Context) error
	HandleGetReport(c echo.Context) error
}

// EvidenceHandler handles the evidence image slot.
type EvidenceHandler interface {
	HandleClearEvidence(c echo.Context) error
	HandleEditEvidence(c echo.Context) error
}

// HealthHandler handles health check operations.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// AuditRunner is the external AI collaborator that produces verdicts.
// Mocked in tests.
type AuditRunner interface {
	Run(ctx context.Context, regulation, scenario string, webSearch bool) (*models.AuditReport, error)
}

// ImageEditor applies a free-text instruction to the evidence image.
// Mocked in tests.
type ImageEditor interface {
	Edit(ctx context.Context, dataURL, instruction string) (string, error)
}
