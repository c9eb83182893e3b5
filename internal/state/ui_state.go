package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alf-academy/enroll/internal/logger"
)

const fileName = "ui-state.json"

// UIState holds wizard preferences that carry across sessions.
type UIState struct {
	Prefill PrefillState `json:"prefill"`
	// Enrolled counts accepted submissions made from the wizard.
	Enrolled     int       `json:"enrolled"`
	LastEnrolled time.Time `json:"last_enrolled,omitempty"`
}

// PrefillState holds answers offered as defaults for the next enrollment.
type PrefillState struct {
	Country string `json:"country,omitempty"`
}

// DefaultUIState returns the default UI state with sensible defaults.
func DefaultUIState() *UIState {
	return &UIState{}
}

// Load reads the UI state from <dataDir>/ui-state.json.
// Returns default state if the file doesn't exist or on error.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, fileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultUIState()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}

	return &state
}

// Save writes the UI state to <dataDir>/ui-state.json.
// Creates the data directory if it doesn't exist.
func Save(dataDir string, state *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, fileName)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}

// RecordEnrollment notes an accepted enrollment and remembers its country
// for the next one.
func (s *UIState) RecordEnrollment(country string, at time.Time) {
	s.Enrolled++
	s.LastEnrolled = at
	if country != "" {
		s.Prefill.Country = country
	}
}
