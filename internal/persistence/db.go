// Package persistence provides SQLite-based match storage: cell records,
// unit records, events and match metadata.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexturn/internal/engine"
	"github.com/talgya/hexturn/internal/world"
)

// DB wraps a SQLite connection for match persistence.
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
	CREATE TABLE IF NOT EXISTS cells (
		idx INTEGER PRIMARY KEY,
		elevation INTEGER NOT NULL,
		terrain_type INTEGER NOT NULL,
		explored INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		x INTEGER NOT NULL,
		z INTEGER NOT NULL,
		facing REAL NOT NULL,
		team INTEGER NOT NULL,
		unit_type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		round INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMap writes all cell records (full replace).
func (db *DB) SaveMap(records []world.CellRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cells"); err != nil {
		return err
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO cells (idx, elevation, terrain_type, explored)
		VALUES (:idx, :elevation, :terrain_type, :explored)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r); err != nil {
			return fmt.Errorf("insert cell %d: %w", r.Index, err)
		}
	}

	return tx.Commit()
}

// LoadMap returns the saved cell records in index order.
func (db *DB) LoadMap() ([]world.CellRecord, error) {
	var records []world.CellRecord
	err := db.conn.Select(&records,
		"SELECT idx, elevation, terrain_type, explored FROM cells ORDER BY idx")
	return records, err
}

// SaveUnits writes all unit records (full replace).
func (db *DB) SaveUnits(records []engine.UnitRecord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM units"); err != nil {
		return err
	}

	for i, r := range records {
		_, err := tx.NamedExec(`INSERT INTO units (x, z, facing, team, unit_type)
			VALUES (:x, :z, :facing, :team, :unit_type)`, r)
		if err != nil {
			return fmt.Errorf("insert unit %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadUnits returns the saved unit records in the order they were saved.
func (db *DB) LoadUnits() ([]engine.UnitRecord, error) {
	var records []engine.UnitRecord
	err := db.conn.Select(&records,
		"SELECT x, z, facing, team, unit_type FROM units ORDER BY id")
	return records, err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, round, turn, description, category) VALUES (?, ?, ?, ?, ?)",
			e.Tick, e.State.Round, e.State.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		`SELECT tick, round AS "state.round", turn AS "state.turn", description, category
		FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in match metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}

// HasGame reports whether a saved match exists.
func (db *DB) HasGame() bool {
	_, err := db.GetMeta("match_id")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Warn("reading match metadata", "error", err)
	}
	return err == nil
}

// SaveGame performs a full save of a match: map, units, new events and the
// turn counters.
func (db *DB) SaveGame(sim *engine.Simulation, events []engine.Event) error {
	cells := sim.MapRecords()
	unitRecords := sim.UnitRecords()
	snap := sim.Snapshot()

	slog.Info("saving match",
		"match", sim.ID,
		"cells", humanize.Comma(int64(len(cells))),
		"units", len(unitRecords),
		"events", len(events),
	)

	if err := db.SaveMap(cells); err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	if err := db.SaveUnits(unitRecords); err != nil {
		return fmt.Errorf("save units: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	meta := map[string]string{
		"match_id":  sim.ID.String(),
		"last_tick": strconv.FormatUint(snap.Tick, 10),
		"round":     strconv.Itoa(snap.State.Round),
	}
	for k, v := range meta {
		if err := db.SaveMeta(k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	slog.Info("match saved")
	return nil
}

// LoadGame restores a saved match into a freshly constructed simulation
// whose grid has the saved dimensions.
func (db *DB) LoadGame(sim *engine.Simulation) error {
	cells, err := db.LoadMap()
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	if len(cells) != sim.Grid().CellCount() {
		return fmt.Errorf("saved map has %d cells, grid has %d: %w",
			len(cells), sim.Grid().CellCount(), world.ErrRecordOutOfRange)
	}
	if err := sim.Grid().ApplyRecords(cells); err != nil {
		return err
	}

	unitRecords, err := db.LoadUnits()
	if err != nil {
		return fmt.Errorf("load units: %w", err)
	}
	if err := sim.RestoreUnits(unitRecords); err != nil {
		return err
	}

	if v, err := db.GetMeta("round"); err == nil {
		if round, err := strconv.Atoi(v); err == nil {
			sim.RestoreState(round)
		}
	}

	slog.Info("match restored", "cells", humanize.Comma(int64(len(cells))), "units", len(unitRecords))
	return nil
}
