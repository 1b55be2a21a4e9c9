// routes.go - Route registration helpers
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/compliance-audit/backend/internal/batch"
	"github.com/compliance-audit/backend/internal/session"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Sessions  *session.Manager
	Processor *batch.Processor
	Auditor   AuditRunner
	Editor    ImageEditor // nil when image editing is not configured
	Logger    *slog.Logger
	Version   string
}

// Handlers holds all handler instances.
type Handlers struct {
	Health   HealthHandler
	Session  SessionHandler
	Upload   UploadHandler
	Audit    AuditHandler
	Evidence EvidenceHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Session:  NewSessionHandler(deps.Sessions),
		Upload:   NewUploadHandler(deps.Sessions, deps.Processor),
		Audit:    NewAuditHandler(deps.Sessions, deps.Auditor, deps.Logger),
		Evidence: NewEvidenceHandler(deps.Sessions, deps.Editor),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.Health.HandleHealth)

	sessions := apiGroup.Group("/sessions")
	sessions.POST("", h.Session.HandleCreateSession)
	sessions.GET("/:id", h.Session.HandleGetSession)
	sessions.DELETE("/:id", h.Session.HandleDeleteSession)
	sessions.GET("/:id/snapshot.msgpack", h.Session.HandleSnapshotMsgpack)

	sessions.GET("/:id/corpus", h.Session.HandleGetCorpus)
	sessions.POST("/:id/corpus", h.Session.HandleAppendCorpus)

	sessions.POST("/:id/files", h.Upload.HandleUploadBatch)

	sessions.POST("/:id/audit", h.Audit.HandleStartAudit)
	sessions.GET("/:id/report", h.Audit.HandleGetReport)

	sessions.DELETE("/:id/evidence", h.Evidence.HandleClearEvidence)
	sessions.POST("/:id/evidence/edit", h.Evidence.HandleEditEvidence)
}
