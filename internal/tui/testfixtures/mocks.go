// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// MockSubmitter stands in for the student API client and MockDrafts for the
// draft store. Both are safe for concurrent use and record their calls.
package testfixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/submission"
)

// MockSubmitter records submitted forms and returns a canned outcome.
type MockSubmitter struct {
	mu sync.Mutex

	// Receipt is returned on success.
	Receipt *submission.Receipt
	// Err, when set, is returned instead of Receipt.
	Err error
	// Block, when set, delays the response until it is closed.
	Block chan struct{}

	Submitted []*enrollment.Form
}

// NewMockSubmitter returns a submitter that accepts everything.
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{Receipt: &submission.Receipt{ID: "stu_1", StatusCode: 201}}
}

// Submit implements the wizard's Submitter.
func (m *MockSubmitter) Submit(ctx context.Context, f *enrollment.Form) (*submission.Receipt, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, f)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Receipt, nil
}

// Calls returns how many times Submit ran.
func (m *MockSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Submitted)
}

// SavedDraft is one MockDrafts.SaveForm call.
type SavedDraft struct {
	Name   string
	Values map[enrollment.Field]string
	Reason string
}

// MockDrafts records saved drafts in memory.
type MockDrafts struct {
	mu    sync.Mutex
	Err   error
	Saved []SavedDraft
}

// NewMockDrafts returns an empty draft recorder.
func NewMockDrafts() *MockDrafts {
	return &MockDrafts{}
}

// SaveForm implements the wizard's DraftSaver.
func (m *MockDrafts) SaveForm(name string, f *enrollment.Form, reason string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Saved = append(m.Saved, SavedDraft{Name: name, Values: f.Values(), Reason: reason})
	return fmt.Sprintf("drafts/%d.yaml", len(m.Saved)), nil
}

// Count returns the number of saved drafts.
func (m *MockDrafts) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}
