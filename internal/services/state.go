package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/pricescout/internal/store"
)

// StateEntry is one persisted value.
type StateEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateRepository is a key/value store for persisted view state.
type StateRepository interface {
	// Get returns the entry for key, or ErrNotFound.
	Get(ctx context.Context, key string) (*StateEntry, error)

	// Set creates or replaces the entry for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key, returning ErrNotFound if absent.
	Delete(ctx context.Context, key string) error

	// List returns entries ordered by key.
	List(ctx context.Context, opts ListOptions) (*ListResult[StateEntry], error)
}

// Compile-time interface guard.
var _ StateRepository = (*SQLiteStateRepository)(nil)

// SQLiteStateRepository implements StateRepository using SQLite.
type SQLiteStateRepository struct {
	db *sql.DB
}

// NewSQLiteStateRepository creates the repository and runs its migrations.
func NewSQLiteStateRepository(ctx context.Context, s store.Store) (*SQLiteStateRepository, error) {
	if err := s.Migrate(ctx, "state", stateMigrations); err != nil {
		return nil, fmt.Errorf("state migrations: %w", err)
	}
	return &SQLiteStateRepository{db: s.DB()}, nil
}

func (r *SQLiteStateRepository) Get(ctx context.Context, key string) (*StateEntry, error) {
	var e StateEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM view_state WHERE key = ?`, key,
	).Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get state %q: %w", key, err)
	}
	return &e, nil
}

func (r *SQLiteStateRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO view_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteStateRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM view_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteStateRepository) List(ctx context.Context, opts ListOptions) (*ListResult[StateEntry], error) {
	opts = normalizeListOptions(opts)
	pattern := escapeLike(opts.Prefix) + "%"

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM view_state WHERE key LIKE ? ESCAPE '\'`, pattern,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count state: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, updated_at FROM view_state
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY key LIMIT ? OFFSET ?`,
		pattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list state: %w", err)
	}
	defer rows.Close()

	items := []StateEntry{}
	for rows.Next() {
		var e StateEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ListResult[StateEntry]{Items: items, Total: total}, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

var stateMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create view_state table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE view_state (
					key        TEXT PRIMARY KEY,
					value      TEXT NOT NULL,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
}
