package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/dbx"
	"github.com/promptkeep/promptkeep/internal/logging"
	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/records"
	"github.com/promptkeep/promptkeep/internal/repositories/tombstones"
)

// SaveRequest carries the fields of a record save. IsFavorite and IsDeleted
// are pointers so an omitted flag inherits the stored value instead of
// silently resetting it.
type SaveRequest struct {
	ID         string
	Title      string
	Content    string
	TestInput  string
	LastResult string
	Tags       []string
	IsFavorite *bool
	IsDeleted  *bool
}

// RecordService owns record versioning: it decides when a save is a material
// change, snapshots the pre-change state into history, and bumps the version.
// The merge path replays remote records through the same Save so remote and
// local edits are treated identically.
type RecordService struct {
	db         *sql.DB
	records    records.Repository
	tombstones tombstones.Repository
	log        logging.Logger

	now   func() time.Time
	newID func() string
}

func NewRecordService(db *sql.DB, log logging.Logger) *RecordService {
	return &RecordService{
		db:         db,
		records:    records.NewSQLiteRepository(db),
		tombstones: tombstones.NewSQLiteRepository(db),
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// GetAll returns every record, newest first. Storage read faults degrade to
// an empty list so the reading surface keeps working on a broken disk; the
// fault is logged, not returned.
func (s *RecordService) GetAll(ctx context.Context) []models.Record {
	list, err := s.records.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load records", "error", err)
		return []models.Record{}
	}
	if list == nil {
		list = []models.Record{}
	}
	return list
}

// Get returns a single record by id.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	return s.records.GetByID(ctx, id)
}

// Count returns the number of stored records, soft-deleted included.
func (s *RecordService) Count(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}

// Save creates or updates a record.
//
// An unknown id creates a fresh record at version 1 with empty history. For a
// known id the stored title/content/testInput/tags are compared structurally
// against the request: when all four match, only updatedAt, lastResult, the
// flags and tags are rewritten and version/history stay untouched; otherwise
// the pre-save state is appended to history and the version is incremented
// by exactly one. CreatedAt never changes after the first save.
func (s *RecordService) Save(ctx context.Context, req SaveRequest) (*models.Record, error) {
	now := s.now()
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	var existing *models.Record
	if req.ID != "" {
		rec, err := s.records.GetByID(ctx, req.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: load record: %v", common.ErrStorage, err)
		}
		existing = rec
	}

	if existing == nil {
		rec := &models.Record{
			ID:         req.ID,
			Title:      req.Title,
			Content:    req.Content,
			TestInput:  req.TestInput,
			LastResult: req.LastResult,
			Tags:       tags,
			IsFavorite: boolValue(req.IsFavorite, false),
			IsDeleted:  boolValue(req.IsDeleted, false),
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
			History:    []models.HistorySnapshot{},
		}
		if rec.ID == "" {
			rec.ID = s.newID()
		}
		if err := s.records.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		return rec, nil
	}

	if existing.ContentEquals(req.Title, req.Content, req.TestInput, tags) {
		existing.UpdatedAt = now
		existing.LastResult = req.LastResult
		existing.Tags = tags
		existing.IsFavorite = boolValue(req.IsFavorite, existing.IsFavorite)
		existing.IsDeleted = boolValue(req.IsDeleted, existing.IsDeleted)

		if err := s.records.Upsert(ctx, existing); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		return existing, nil
	}

	rec := &models.Record{
		ID:         existing.ID,
		Title:      req.Title,
		Content:    req.Content,
		TestInput:  req.TestInput,
		LastResult: req.LastResult,
		Tags:       tags,
		IsFavorite: boolValue(req.IsFavorite, existing.IsFavorite),
		IsDeleted:  boolValue(req.IsDeleted, existing.IsDeleted),
		Version:    existing.Version + 1,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  now,
		History:    append(existing.History, existing.Snapshot()),
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return rec, nil
}

// SoftDelete flags a record as trashed. The record stays in storage and can
// be restored.
func (s *RecordService) SoftDelete(ctx context.Context, id string) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rec.IsDeleted = true
	rec.UpdatedAt = s.now()
	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

// Restore clears the soft-delete flag.
func (s *RecordService) Restore(ctx context.Context, id string) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rec.IsDeleted = false
	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
// No version or history effect.
func (s *RecordService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	rec.IsFavorite = !rec.IsFavorite
	if err := s.records.Upsert(ctx, rec); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return rec.IsFavorite, nil
}

// HardDelete removes the record row and tombstones its id in one transaction
// so a later merge can never resurrect it. Irreversible.
func (s *RecordService) HardDelete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Delete(ctx, id); err != nil {
			return err
		}
		return tombstones.NewSQLiteRepository(tx).Add(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%w: hard delete %s: %v", common.ErrStorage, id, err)
	}
	return nil
}

// ClearAll wipes records and tombstones. Used by the destructive
// "start over" path only.
func (s *RecordService) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return tombstones.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
