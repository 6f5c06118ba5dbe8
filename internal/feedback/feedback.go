// Package feedback persists review feedback state between runs.
package feedback

import (
	"encoding/json"
	"fmt"
	"os"
)

// State is the feedback tracking data, stored as JSON alongside the
// workflow. TotalReviews increments once per completed run.
type State struct {
	AcceptedPatterns []string `json:"accepted_patterns"`
	IgnoredPatterns  []string `json:"ignored_patterns"`
	TotalReviews     int      `json:"total_reviews"`
}

// FileStore reads and writes feedback state at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted state, or a zero-valued state when the file
// does not exist yet.
func (s *FileStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{
				AcceptedPatterns: []string{},
				IgnoredPatterns:  []string{},
			}, nil
		}
		return State{}, fmt.Errorf("read feedback %s: %w", s.path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("unmarshal feedback %s: %w", s.path, err)
	}
	if state.AcceptedPatterns == nil {
		state.AcceptedPatterns = []string{}
	}
	if state.IgnoredPatterns == nil {
		state.IgnoredPatterns = []string{}
	}
	return state, nil
}

// Save writes the state back to disk, pretty-printed so workflow diffs
// stay reviewable.
func (s *FileStore) Save(state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write feedback %s: %w", s.path, err)
	}
	return nil
}
