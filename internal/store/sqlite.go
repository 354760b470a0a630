package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"time"

	"chainrack/internal/history"
	"chainrack/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, SQLiteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage: WAL enables one writer +
	// many readers; busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := s.migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			slot_index INTEGER PRIMARY KEY,
			saved_at_unixms INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS presets (
			name TEXT PRIMARY KEY,
			created_at_unixms INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// SaveSlot persists one named snapshot slot (0-3).
func (s Store) SaveSlot(ctx context.Context, slot int, saved *model.SavedSlot) error {
	if slot < 0 || slot >= history.NumSlots || saved == nil {
		return nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := json.Marshal(saved.Snapshot)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO slots (slot_index, saved_at_unixms, snapshot_json)
		 VALUES (?, ?, ?)
		 ON CONFLICT(slot_index) DO UPDATE SET
		   saved_at_unixms = excluded.saved_at_unixms,
		   snapshot_json = excluded.snapshot_json;`,
		slot, saved.SavedAt.UnixMilli(), string(b))
	return err
}

// LoadSlots reads every persisted slot; absent slots are nil.
func (s Store) LoadSlots(ctx context.Context) ([history.NumSlots]*model.SavedSlot, error) {
	var out [history.NumSlots]*model.SavedSlot

	db, err := s.openSQLite(ctx)
	if err != nil {
		return out, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT slot_index, saved_at_unixms, snapshot_json FROM slots;`)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var savedAtMS int64
		var raw string
		if err := rows.Scan(&idx, &savedAtMS, &raw); err != nil {
			return out, err
		}
		if idx < 0 || idx >= history.NumSlots {
			continue
		}
		var snap model.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return out, err
		}
		out[idx] = &model.SavedSlot{
			Snapshot: snap,
			SavedAt:  time.UnixMilli(savedAtMS).UTC(),
		}
	}
	return out, rows.Err()
}

// Preset is a named full-chain snapshot, independent of the A-D slots.
type Preset struct {
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Snapshot  model.Snapshot `json:"snapshot"`
}

func (s Store) SavePreset(ctx context.Context, name string, snap model.Snapshot) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO presets (name, created_at_unixms, snapshot_json)
		 VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   created_at_unixms = excluded.created_at_unixms,
		   snapshot_json = excluded.snapshot_json;`,
		name, time.Now().UTC().UnixMilli(), string(b))
	return err
}

func (s Store) LoadPreset(ctx context.Context, name string) (*Preset, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var createdAtMS int64
	var raw string
	err = db.QueryRowContext(ctx,
		`SELECT created_at_unixms, snapshot_json FROM presets WHERE name = ?;`, name).
		Scan(&createdAtMS, &raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, err
	}
	return &Preset{
		Name:      name,
		CreatedAt: time.UnixMilli(createdAtMS).UTC(),
		Snapshot:  snap,
	}, nil
}

func (s Store) ListPresets(ctx context.Context) ([]Preset, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT name, created_at_unixms, snapshot_json FROM presets ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		var p Preset
		var createdAtMS int64
		var raw string
		if err := rows.Scan(&p.Name, &createdAtMS, &raw); err != nil {
			return nil, err
		}
		p.CreatedAt = time.UnixMilli(createdAtMS).UTC()
		if err := json.Unmarshal([]byte(raw), &p.Snapshot); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s Store) DeletePreset(ctx context.Context, name string) (bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?;`, name)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
