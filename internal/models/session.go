package models

// SessionPhase represents what a session is currently doing. Batch
// processing and auditing are mutually exclusive with each other and with
// themselves; handlers reject work that would overlap.
type SessionPhase string

const (
	PhaseIdle     SessionPhase = "idle"
	PhaseBatching SessionPhase = "batching"
	PhaseAuditing SessionPhase = "auditing"
)

// SessionSnapshot is the wire representation of one session's state.
// Report is omitted while an audit is in flight so the three render states
// (idle / loading / has-result) never overlap.
type SessionSnapshot struct {
	ID          string       `json:"id" msgpack:"id"`
	Phase       SessionPhase `json:"phase" msgpack:"phase"`
	Corpus      string       `json:"corpus" msgpack:"corpus"`
	CorpusBytes int          `json:"corpusBytes" msgpack:"corpusBytes"`
	HasEvidence bool         `json:"hasEvidence" msgpack:"hasEvidence"`
	Evidence    string       `json:"evidence,omitempty" msgpack:"evidence,omitempty"`
	Report      *AuditReport `json:"report,omitempty" msgpack:"report,omitempty"`
	LastError   string       `json:"lastError,omitempty" msgpack:"lastError,omitempty"`
	CreatedAt   int64        `json:"createdAt" msgpack:"createdAt"` // Unix ms
}

// BatchSummary reports what one successful upload batch contributed.
type BatchSummary struct {
	Documents   int  `json:"documents"`
	Images      int  `json:"images"`
	CorpusBytes int  `json:"corpusBytes"`
	HasEvidence bool `json:"hasEvidence"`
}
