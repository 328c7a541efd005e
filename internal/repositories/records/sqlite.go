package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/dbx"
	"github.com/promptkeep/promptkeep/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = `id, title, content, test_input, last_result, tags,
	is_favorite, is_deleted, version, created_at, updated_at, history`

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Record) error {
	tags, err := json.Marshal(emptyIfNilTags(rec.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	history, err := json.Marshal(emptyIfNilHistory(rec.History))
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	query := `INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			test_input = excluded.test_input,
			last_result = excluded.last_result,
			tags = excluded.tags,
			is_favorite = excluded.is_favorite,
			is_deleted = excluded.is_deleted,
			version = excluded.version,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			history = excluded.history
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.Content, rec.TestInput, rec.LastResult, string(tags),
		boolToInt(rec.IsFavorite), boolToInt(rec.IsDeleted), rec.Version,
		rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), string(history))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var (
		rec                  models.Record
		tags, history        string
		favorite, deleted    int
		createdAt, updatedAt int64
	)
	err := scan(&rec.ID, &rec.Title, &rec.Content, &rec.TestInput, &rec.LastResult,
		&tags, &favorite, &deleted, &rec.Version, &createdAt, &updatedAt, &history)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record row: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags for record %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		return nil, fmt.Errorf("failed to decode history for record %s: %w", rec.ID, err)
	}

	rec.IsFavorite = favorite != 0
	rec.IsDeleted = deleted != 0
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &rec, nil
}

func emptyIfNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func emptyIfNilHistory(history []models.HistorySnapshot) []models.HistorySnapshot {
	if history == nil {
		return []models.HistorySnapshot{}
	}
	return history
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
