package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/tubeplay/internal/db"
)

// Outcome is how the latest play of a reference ended up.
type Outcome string

const (
	OutcomePlayed Outcome = "played"
	OutcomeFailed Outcome = "failed"
)

// HistoryEntry is one previously requested reference.
type HistoryEntry struct {
	Reference    string
	Title        string
	PlayCount    int
	LastPlayedAt time.Time
	LastOutcome  Outcome
}

// RecordHistory upserts the outcome of a play request. Only successful
// plays count towards PlayCount; an empty title keeps the stored one.
func (m *Manager) RecordHistory(reference, title string, outcome Outcome, at time.Time) error {
	played := 0
	if outcome == OutcomePlayed {
		played = 1
	}
	_, err := m.db.Exec(`
		INSERT INTO history (reference, title, play_count, last_played_at, last_outcome)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(reference) DO UPDATE SET
			title = COALESCE(NULLIF(excluded.title, ''), history.title),
			play_count = history.play_count + excluded.play_count,
			last_played_at = excluded.last_played_at,
			last_outcome = excluded.last_outcome
	`, reference, title, played, at.Unix(), string(outcome))
	return err
}

// ListHistory returns up to limit entries, most recent first.
func (m *Manager) ListHistory(limit int) ([]HistoryEntry, error) {
	rows, err := m.db.Query(`
		SELECT reference, title, play_count, last_played_at, last_outcome
		FROM history
		ORDER BY last_played_at DESC, reference
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var title sql.NullString
		var playedAt int64
		var outcome string
		if err := rows.Scan(&e.Reference, &title, &e.PlayCount, &playedAt, &outcome); err != nil {
			return nil, err
		}
		e.Title = dbutil.NullStringValue(title)
		e.LastPlayedAt = time.Unix(playedAt, 0)
		e.LastOutcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteHistory removes a reference from the history.
func (m *Manager) DeleteHistory(reference string) error {
	_, err := m.db.Exec(`DELETE FROM history WHERE reference = ?`, reference)
	return err
}

// Prune keeps the keep most recent history entries and drops cached
// resolutions older than before.
func (m *Manager) Prune(keep int, before time.Time) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM history WHERE reference NOT IN (
				SELECT reference FROM history ORDER BY last_played_at DESC, reference LIMIT ?
			)
		`, keep); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM resolutions WHERE resolved_at < ?`, before.Unix())
		return err
	})
}
