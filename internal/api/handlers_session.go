// handlers_session.go - Session lifecycle and corpus handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/compliance-audit/backend/internal/session"
)

// SessionHandlerImpl implements the SessionHandler interface.
type SessionHandlerImpl struct {
	sessions *session.Manager
}

// NewSessionHandler creates a new session handler instance.
func NewSessionHandler(sessions *session.Manager) SessionHandler {
	return &SessionHandlerImpl{sessions: sessions}
}

// HandleCreateSession registers a new audit session.
func (h *SessionHandlerImpl) HandleCreateSession(c echo.Context) error {
	snap, err := h.sessions.Create()
	if err != nil {
		return mapSessionError(err, "")
	}
	return c.JSON(http.StatusCreated, snap)
}

// HandleGetSession returns the full state snapshot of a session.
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleDeleteSession discards a session and everything it accumulated.
func (h *SessionHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if err := h.sessions.Delete(id); err != nil {
		return mapSessionError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetCorpus returns the accumulated regulation text.
func (h *SessionHandlerImpl) HandleGetCorpus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	corpus, err := h.sessions.Corpus(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"corpus":      corpus,
		"corpusBytes": len(corpus),
	})
}

// HandleAppendCorpus folds user free-text edits into the corpus buffer.
// The corpus is append-only; there is no replace operation.
func (h *SessionHandlerImpl) HandleAppendCorpus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req appendCorpusRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Text == "" {
		return NewValidationError("text")
	}

	if err := h.sessions.AppendCorpus(id, req.Text); err != nil {
		return mapSessionError(err, id)
	}
	corpus, err := h.sessions.Corpus(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]any{"corpusBytes": len(corpus)})
}

// HandleSnapshotMsgpack returns the session snapshot as msgpack for
// compact transfer to the frontend.
func (h *SessionHandlerImpl) HandleSnapshotMsgpack(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	snap, err := h.sessions.Snapshot(id)
	if err != nil {
		return mapSessionError(err, id)
	}
	encoded, err := msgpack.Marshal(snap)
	if err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", encoded)
}

type appendCorpusRequest struct {
	Text string `json:"text"`
}
