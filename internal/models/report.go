package models

import "strings"

// AuditStatus is the verdict tag of a compliance audit.
type AuditStatus string

const (
	StatusCompliant AuditStatus = "compliant"
	StatusViolation AuditStatus = "violation"
	StatusUncertain AuditStatus = "uncertain"
)

// Citation is one web source backing an audit narrative.
type Citation struct {
	URL   string `json:"url" msgpack:"url"`
	Title string `json:"title" msgpack:"title"`
}

// AuditReport is the result of one audit invocation. Reports are immutable
// and replaced wholesale by each new audit, never merged.
type AuditReport struct {
	Status    AuditStatus `json:"status" msgpack:"status"`
	Narrative string      `json:"narrative" msgpack:"narrative"`
	Citations []Citation  `json:"citations,omitempty" msgpack:"citations,omitempty"`
}

// ParseAuditStatus maps a model-provided status string onto the closed
// verdict set. Anything unrecognized is treated as uncertain.
func ParseAuditStatus(s string) AuditStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compliant":
		return StatusCompliant
	case "violation", "non-compliant", "noncompliant":
		return StatusViolation
	default:
		return StatusUncertain
	}
}
