// Package store keeps named map state saves in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a save name does not exist.
var ErrNotFound = errors.New("save not found")

// Save is one row of the save table without its payload.
type Save struct {
	Name      string
	Size      int // payload bytes
	CreatedAt time.Time
	UpdatedAt time.Time
}

type saveRow struct {
	Name    string `db:"name"`
	Size    int    `db:"size"`
	Created int64  `db:"created_at"`
	Updated int64  `db:"updated_at"`
}

// Store wraps a SQLite connection.
type Store struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS map_states (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Save writes data under name, replacing any previous save. The creation
// time of an existing save is kept.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.New("save name is empty")
	}
	ts := s.now().Unix()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO map_states (name, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	slog.Debug("map state saved", "name", name, "bytes", len(data))
	return nil
}

// Load returns the data saved under name.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.conn.GetContext(ctx, &data, "SELECT data FROM map_states WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return data, nil
}

// List returns every save, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Save, error) {
	var rows []saveRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT name, length(data) AS size, created_at, updated_at FROM map_states ORDER BY updated_at DESC, name",
	)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	out := make([]Save, 0, len(rows))
	for _, r := range rows {
		out = append(out, Save{
			Name:      r.Name,
			Size:      r.Size,
			CreatedAt: time.Unix(r.Created, 0),
			UpdatedAt: time.Unix(r.Updated, 0),
		})
	}
	return out, nil
}

// Delete removes the save called name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM map_states WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
