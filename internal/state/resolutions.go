package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/tubeplay/internal/db"
	"github.com/llehouerou/tubeplay/internal/resolver"
)

// LookupResolution returns the cached stream for reference.
func (m *Manager) LookupResolution(reference string) (resolver.Stream, bool, error) {
	row := m.db.QueryRow(`
		SELECT uri, title, resolved_at FROM resolutions WHERE reference = ?
	`, reference)

	var uri string
	var title sql.NullString
	var resolvedAt int64
	err := row.Scan(&uri, &title, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return resolver.Stream{}, false, nil
	}
	if err != nil {
		return resolver.Stream{}, false, err
	}

	return resolver.Stream{
		URI:        uri,
		Reference:  reference,
		Title:      dbutil.NullStringValue(title),
		ResolvedAt: time.Unix(resolvedAt, 0),
	}, true, nil
}

// SaveResolution stores or replaces the cached stream for s.Reference.
func (m *Manager) SaveResolution(s resolver.Stream) error {
	_, err := m.db.Exec(`
		INSERT INTO resolutions (reference, uri, title, resolved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(reference) DO UPDATE SET
			uri = excluded.uri,
			title = excluded.title,
			resolved_at = excluded.resolved_at
	`, s.Reference, s.URI, s.Title, s.ResolvedAt.Unix())
	return err
}
