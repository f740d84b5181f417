package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"PriceSniper/internal/model"
)

// State is the dashboard's local UI state.
type State struct {
	Windows   map[int64]model.TimeWindow `json:"windows"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Windows: make(map[int64]model.TimeWindow)}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Windows == nil {
		state.Windows = make(map[int64]model.TimeWindow)
	}
	return &state, nil
}

// SaveState writes the state to a JSON file, creating its directory.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
