// Package tombstones persists the identifiers of permanently deleted records.
//
// The log lives in its own table, apart from the record collection: a
// hard-deleted record has no row left to carry a "do not resurrect" marker,
// and the merge path must be able to consult the log before writing anything.
package tombstones

import (
	"context"
	"fmt"

	"github.com/promptkeep/promptkeep/internal/dbx"
)

// Repository is the append-only set of hard-deleted record ids.
type Repository interface {
	// Add records id as permanently deleted. Adding an existing id is a no-op.
	Add(ctx context.Context, id string) error

	// Contains reports whether id was permanently deleted.
	Contains(ctx context.Context, id string) (bool, error)

	// List returns all tombstoned ids.
	List(ctx context.Context) ([]string, error)

	// Clear empties the log. Only the sync coordinator calls this, after a
	// push has been confirmed durable.
	Clear(ctx context.Context) error
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tombstones (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, id)
	if err != nil {
		return fmt.Errorf("failed to add tombstone %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Contains(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tombstones WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check tombstone %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tombstones`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tombstone row: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tombstone rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tombstones`)
	if err != nil {
		return fmt.Errorf("failed to clear tombstones: %w", err)
	}
	return nil
}
