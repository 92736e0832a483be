package state

import (
	"database/sql"
	"errors"
	"time"
)

// InputState is what the user last typed in the reference field.
type InputState struct {
	Reference string
}

// GetInput returns the saved input, or nil on first run.
func (m *Manager) GetInput() (*InputState, error) {
	return getInput(m.db)
}

// SaveInput persists the input after a short quiet period, so typing does
// not hit the database on every key.
func (m *Manager) SaveInput(state InputState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveInput(m.db, *pending)
		}
	})
}

func getInput(db *sql.DB) (*InputState, error) {
	var state InputState
	err := db.QueryRow(`SELECT reference FROM input_state WHERE id = 1`).Scan(&state.Reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func saveInput(db *sql.DB, state InputState) error {
	_, err := db.Exec(`
		INSERT INTO input_state (id, reference) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET reference = excluded.reference
	`, state.Reference)
	return err
}
