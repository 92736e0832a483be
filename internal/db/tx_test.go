package db_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/llehouerou/tubeplay/internal/db"
	"github.com/llehouerou/tubeplay/internal/state"
)

const (
	refA = "https://www.youtube.com/watch?v=aaaaaaaaaaa"
	refB = "https://www.youtube.com/watch?v=bbbbbbbbbbb"
)

// openSchema returns the tubeplay database with its real schema.
func openSchema(t *testing.T) *sql.DB {
	t.Helper()
	m, err := state.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open state: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m.DB()
}

// recordPlay writes the rows a successful play leaves behind: a history
// entry and the cached resolution it came from.
func recordPlay(tx *sql.Tx, reference string) error {
	if _, err := tx.Exec(`
		INSERT INTO history (reference, title, play_count, last_played_at, last_outcome)
		VALUES (?, NULL, 1, 100, 'played')
	`, reference); err != nil {
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO resolutions (reference, uri, title, resolved_at)
		VALUES (?, ?, NULL, 100)
	`, reference, "stream://"+reference)
	return err
}

func count(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestWithTx_CommitsBothTables(t *testing.T) {
	conn := openSchema(t)

	err := db.WithTx(conn, func(tx *sql.Tx) error {
		if err := recordPlay(tx, refA); err != nil {
			return err
		}
		return recordPlay(tx, refB)
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if n := count(t, conn, "history"); n != 2 {
		t.Errorf("history rows = %d, want 2", n)
	}
	if n := count(t, conn, "resolutions"); n != 2 {
		t.Errorf("resolution rows = %d, want 2", n)
	}
}

func TestWithTx_ErrorRollsBackEverything(t *testing.T) {
	conn := openSchema(t)
	abort := errors.New("abort")

	err := db.WithTx(conn, func(tx *sql.Tx) error {
		if err := recordPlay(tx, refA); err != nil {
			return err
		}
		return abort
	})

	if !errors.Is(err, abort) {
		t.Fatalf("WithTx error = %v, want %v", err, abort)
	}
	if n := count(t, conn, "history"); n != 0 {
		t.Errorf("history rows = %d, want 0 (rolled back)", n)
	}
	if n := count(t, conn, "resolutions"); n != 0 {
		t.Errorf("resolution rows = %d, want 0 (rolled back)", n)
	}
}

func TestWithTx_ConstraintViolationRollsBack(t *testing.T) {
	conn := openSchema(t)

	err := db.WithTx(conn, func(tx *sql.Tx) error {
		if err := recordPlay(tx, refA); err != nil {
			return err
		}
		// input_state holds a single row with id 1.
		_, err := tx.Exec(`INSERT INTO input_state (id, reference) VALUES (2, ?)`, refA)
		return err
	})

	if err == nil {
		t.Fatal("WithTx should fail on the input_state check")
	}
	if n := count(t, conn, "history"); n != 0 {
		t.Errorf("history rows = %d, want 0 (rolled back)", n)
	}
}

func TestNullStringValue(t *testing.T) {
	conn := openSchema(t)
	if err := db.WithTx(conn, func(tx *sql.Tx) error { return recordPlay(tx, refA) }); err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	var title sql.NullString
	if err := conn.QueryRow(`SELECT title FROM history WHERE reference = ?`, refA).Scan(&title); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got := db.NullStringValue(title); got != "" {
		t.Errorf("untitled entry = %q, want empty", got)
	}

	if got := db.NullStringValue(sql.NullString{String: "Never Gonna Give You Up", Valid: true}); got != "Never Gonna Give You Up" {
		t.Errorf("titled entry = %q", got)
	}
}
