package watch

import (
	"fmt"
	"sync"

	"PriceSniper/internal/calculator"
	"PriceSniper/internal/logger"
	"PriceSniper/internal/model"
)

// Manager holds the per-product chart window selection with concurrency safety.
type Manager struct {
	mu            sync.Mutex
	state         *State
	filePath      string
	defaultWindow model.TimeWindow
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string, defaultWindow model.TimeWindow) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	m := &Manager{state: state, filePath: filePath, defaultWindow: defaultWindow}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Window returns the window selected for a product, or the default.
func (m *Manager) Window(productID int64) model.TimeWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.state.Windows[productID]; ok {
		return w
	}
	return m.defaultWindow
}

// SetWindow selects the chart window for a product. Unrecognized windows are rejected.
func (m *Manager) SetWindow(productID int64, raw string) (model.TimeWindow, error) {
	w, ok := calculator.ParseWindow(raw)
	if !ok {
		return "", fmt.Errorf("unknown window %q, expected one of %v", raw, model.Windows)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, had := m.state.Windows[productID]
	m.state.Windows[productID] = w
	if err := m.save(); err != nil {
		if had {
			m.state.Windows[productID] = prev
		} else {
			delete(m.state.Windows, productID)
		}
		return "", err
	}
	logger.L.Infof("product %d window set to %s", productID, w)
	return w, nil
}

// Forget drops all state for a product that is no longer tracked.
func (m *Manager) Forget(productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.state.Windows[productID]
	if !ok {
		return nil
	}
	delete(m.state.Windows, productID)
	if err := m.save(); err != nil {
		m.state.Windows[productID] = prev
		return err
	}
	return nil
}

// save must be called with mu held.
func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
