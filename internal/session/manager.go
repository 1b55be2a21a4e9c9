// Package session owns the in-memory state of one audit workspace: the
// accumulated regulation corpus, the current evidence image, the latest
// audit report and the in-flight phase guards. Nothing is persisted;
// untouched sessions are cleaned up after a timeout.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compliance-audit/backend/internal/models"
)

// MaxSessions bounds concurrent sessions to keep memory predictable.
const MaxSessions = 100

// DefaultMaxAge is how long an untouched session is kept before cleanup.
const DefaultMaxAge = 30 * time.Minute

// State guard errors. Handlers map these onto HTTP status codes.
var (
	ErrNotFound        = errors.New("session not found")
	ErrBatchInFlight   = errors.New("a file batch is already being processed")
	ErrAuditInFlight   = errors.New("an audit is already in progress")
	ErrNoEvidence      = errors.New("no evidence image is set")
	ErrTooManySessions = errors.New("session limit reached")
)

// state holds everything one browser session has accumulated. All fields
// are guarded by the owning Manager's mutex.
type state struct {
	id           string
	phase        models.SessionPhase
	corpus       strings.Builder // append-only
	evidence     string          // data URL, "" when unset
	report       *models.AuditReport
	lastError    string
	createdAt    time.Time
	lastAccessed time.Time
}

// Manager tracks live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*state)}
}

// Create registers a new idle session and returns its snapshot.
func (m *Manager) Create() (*models.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= MaxSessions {
		return nil, ErrTooManySessions
	}
	now := time.Now()
	s := &state{
		id:           uuid.New().String(),
		phase:        models.PhaseIdle,
		createdAt:    now,
		lastAccessed: now,
	}
	m.sessions[s.id] = s
	return snapshot(s), nil
}

// Snapshot returns the current state of a session.
func (m *Manager) Snapshot(id string) (*models.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastAccessed = time.Now()
	return snapshot(s), nil
}

// Delete removes a session entirely.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// CleanupOldSessions drops sessions untouched for longer than maxAge and
// returns how many were removed. Sessions with in-flight work are spared;
// their completion callbacks still need the state.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, s := range m.sessions {
		if s.phase == models.PhaseIdle && s.lastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// BeginBatch marks a session as processing an upload batch. It fails when
// a batch or an audit is already in flight.
func (m *Manager) BeginBatch(id string) error {
	return m.transition(id, models.PhaseBatching)
}

// CommitBatch atomically applies one successful batch: the extracted text
// is appended to the corpus (never reordered, never overwritten) and, when
// the batch carried an image, the evidence slot is replaced last-wins.
func (m *Manager) CommitBatch(id, text, evidence string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.corpus.WriteString(text)
	if evidence != "" {
		s.evidence = evidence
	}
	s.phase = models.PhaseIdle
	s.lastError = ""
	s.lastAccessed = time.Now()
	return nil
}

// FailBatch records a batch failure. The corpus, evidence and report are
// left exactly as they were before the batch started.
func (m *Manager) FailBatch(id string, cause error) error {
	return m.fail(id, cause.Error())
}

// AppendCorpus folds user free-text edits into the corpus buffer. Edits
// are rejected while a batch or audit is in flight.
func (m *Manager) AppendCorpus(id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := guardIdle(s); err != nil {
		return err
	}
	s.corpus.WriteString(text)
	s.lastAccessed = time.Now()
	return nil
}

// Corpus returns the accumulated regulation text.
func (m *Manager) Corpus(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", ErrNotFound
	}
	return s.corpus.String(), nil
}

// Evidence returns the current evidence image data URL.
func (m *Manager) Evidence(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", ErrNotFound
	}
	if s.evidence == "" {
		return "", ErrNoEvidence
	}
	return s.evidence, nil
}

// ClearEvidence empties the evidence slot.
func (m *Manager) ClearEvidence(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := guardIdle(s); err != nil {
		return err
	}
	s.evidence = ""
	s.lastAccessed = time.Now()
	return nil
}

// ReplaceEvidence swaps in a new evidence image, typically an edited one.
func (m *Manager) ReplaceEvidence(id, dataURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := guardIdle(s); err != nil {
		return err
	}
	s.evidence = dataURL
	s.lastAccessed = time.Now()
	return nil
}

// BeginAudit marks a session as waiting on the audit service. The previous
// report stays in place so a failed audit does not destroy it.
func (m *Manager) BeginAudit(id string) error {
	return m.transition(id, models.PhaseAuditing)
}

// CompleteAudit replaces the report wholesale and returns the session to
// idle.
func (m *Manager) CompleteAudit(id string, report *models.AuditReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.report = report
	s.phase = models.PhaseIdle
	s.lastError = ""
	s.lastAccessed = time.Now()
	return nil
}

// FailAudit records an audit failure. The previous report survives.
func (m *Manager) FailAudit(id, message string) error {
	return m.fail(id, message)
}

func (m *Manager) transition(id string, to models.SessionPhase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := guardIdle(s); err != nil {
		return err
	}
	s.phase = to
	s.lastAccessed = time.Now()
	return nil
}

func (m *Manager) fail(id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.phase = models.PhaseIdle
	s.lastError = message
	s.lastAccessed = time.Now()
	return nil
}

func guardIdle(s *state) error {
	switch s.phase {
	case models.PhaseBatching:
		return ErrBatchInFlight
	case models.PhaseAuditing:
		return ErrAuditInFlight
	}
	return nil
}

// snapshot builds the wire view of a session. The report is suppressed
// while an audit is in flight so loading and has-result never overlap.
func snapshot(s *state) *models.SessionSnapshot {
	corpus := s.corpus.String()
	snap := &models.SessionSnapshot{
		ID:          s.id,
		Phase:       s.phase,
		Corpus:      corpus,
		CorpusBytes: len(corpus),
		HasEvidence: s.evidence != "",
		Evidence:    s.evidence,
		LastError:   s.lastError,
		CreatedAt:   s.createdAt.UnixMilli(),
	}
	if s.phase != models.PhaseAuditing {
		snap.Report = s.report
	}
	return snap
}
