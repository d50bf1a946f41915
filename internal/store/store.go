/*
Package store
File: store.go
Description:
    SQLite-backed persistence for the engine snapshot.

    The schema is two tables: a single-row engine_state table holding the
    scalar fields, and an upgrade_counts table holding one row per owned
    upgrade. Saves are full replaces inside one transaction, triggered
    write-through after every resource-affecting operation. A missing or
    unreadable database is never fatal to the game: the caller degrades to
    an in-memory session.
*/

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/everforgeworks/zenith-engine/internal/game"
)

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS engine_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		resource REAL NOT NULL,
		total_accrued REAL NOT NULL,
		coherence REAL NOT NULL,
		reset_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS upgrade_counts (
		key TEXT PRIMARY KEY,
		count INTEGER NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save writes the full snapshot, replacing whatever was stored before.
func (db *DB) Save(s game.SaveState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO engine_state
		(id, resource, total_accrued, coherence, reset_count)
		VALUES (1, ?, ?, ?, ?)`,
		s.Resource, s.TotalAccrued, s.Coherence, s.ResetCount,
	)
	if err != nil {
		return fmt.Errorf("save engine state: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM upgrade_counts"); err != nil {
		return err
	}
	for _, uc := range s.Upgrades {
		if uc.Count == 0 {
			continue
		}
		if _, err := tx.Exec("INSERT INTO upgrade_counts (key, count) VALUES (?, ?)", uc.Key, uc.Count); err != nil {
			return fmt.Errorf("save upgrade %s: %w", uc.Key, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored snapshot. The boolean is false when no snapshot has
// ever been saved (fresh database); that is not an error.
func (db *DB) Load() (game.SaveState, bool, error) {
	var s game.SaveState

	row := db.conn.QueryRow(`SELECT resource, total_accrued, coherence, reset_count
		FROM engine_state WHERE id = 1`)
	err := row.Scan(&s.Resource, &s.TotalAccrued, &s.Coherence, &s.ResetCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, false, nil
		}
		return s, false, fmt.Errorf("load engine state: %w", err)
	}

	if err := db.conn.Select(&s.Upgrades, "SELECT key, count FROM upgrade_counts"); err != nil {
		return s, false, fmt.Errorf("load upgrade counts: %w", err)
	}

	return s, true, nil
}
