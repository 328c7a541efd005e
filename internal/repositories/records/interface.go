package records

import (
	"context"

	"github.com/promptkeep/promptkeep/internal/models"
)

// Repository describes persistence operations for prompt records.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// GetAll returns every record, including soft-deleted ones,
	// ordered by UpdatedAt descending.
	GetAll(ctx context.Context) ([]models.Record, error)

	// GetByID returns a record by its identifier, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Record, error)

	// Upsert inserts a new record or replaces an existing one by ID.
	// Versioning decisions are the service layer's job; the repository
	// stores what it is given.
	Upsert(ctx context.Context, rec *models.Record) error

	// Delete removes the row for id. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored records, soft-deleted included.
	Count(ctx context.Context) (int, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}
