package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS history (
			reference TEXT PRIMARY KEY,
			title TEXT,
			play_count INTEGER NOT NULL DEFAULT 0,
			last_played_at INTEGER NOT NULL,
			last_outcome TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_last_played ON history(last_played_at DESC);

		CREATE TABLE IF NOT EXISTS resolutions (
			reference TEXT PRIMARY KEY,
			uri TEXT NOT NULL,
			title TEXT,
			resolved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS input_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			reference TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}

// SchemaVersion returns the highest recorded schema version.
func (m *Manager) SchemaVersion() (int, error) {
	var v int
	err := m.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v)
	return v, err
}
