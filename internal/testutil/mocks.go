// Package testutil provides mock implementations of the external AI
// collaborators for handler and session tests.
package testutil

import (
	"context"
	"sync"

	"github.com/compliance-audit/backend/internal/models"
)

// MockAuditRunner implements api.AuditRunner.
type MockAuditRunner struct {
	mu      sync.Mutex
	Report  *models.AuditReport
	Err     error
	calls   int
	LastReg string
	LastScn string
	LastWeb bool
}

// Run returns the configured report or error and records the call.
func (m *MockAuditRunner) Run(_ context.Context, regulation, scenario string, webSearch bool) (*models.AuditReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.LastReg = regulation
	m.LastScn = scenario
	m.LastWeb = webSearch
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}

// Calls reports how many times Run was invoked.
func (m *MockAuditRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockImageEditor implements api.ImageEditor.
type MockImageEditor struct {
	mu       sync.Mutex
	Result   string
	Err      error
	calls    int
	LastURL  string
	LastInst string
}

// Edit returns the configured result or error and records the call.
func (m *MockImageEditor) Edit(_ context.Context, dataURL, instruction string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.LastURL = dataURL
	m.LastInst = instruction
	if m.Err != nil {
		return "", m.Err
	}
	return m.Result, nil
}

// Calls reports how many times Edit was invoked.
func (m *MockImageEditor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
