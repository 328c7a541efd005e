package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/dbx"
	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/records"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

// PorterService moves the whole vault in and out of the portable envelope
// format. Export is what sync pushes to the cloud; Import is the destructive
// restore that replaces local state with the envelope's contents.
type PorterService struct {
	db       *sql.DB
	records  records.Repository
	settings settings.Repository
	usage    *UsageService

	now   func() time.Time
	newID func() string
}

func NewPorterService(db *sql.DB, settingsRepo settings.Repository, usage *UsageService) *PorterService {
	return &PorterService{
		db:       db,
		records:  records.NewSQLiteRepository(db),
		settings: settingsRepo,
		usage:    usage,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Export builds the envelope from current local state: every record including
// soft-deleted ones, plus the usage count, license key and device id.
func (p *PorterService) Export(ctx context.Context) (*models.Envelope, error) {
	list, err := p.records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if list == nil {
		list = []models.Record{}
	}
	count, err := p.usage.Get(ctx)
	if err != nil {
		return nil, err
	}
	licenseKey, err := p.settings.Get(ctx, models.KeyLicenseKey)
	if err != nil {
		return nil, err
	}
	deviceID, err := p.settings.Get(ctx, models.KeyDeviceID)
	if err != nil {
		return nil, err
	}
	return &models.Envelope{
		Prompts: list,
		Meta: models.Meta{
			ExportedAt: p.now(),
			UsageCount: count,
			LicenseKey: licenseKey,
			DeviceID:   deviceID,
		},
	}, nil
}

// Import replaces the local record set with the envelope's contents. Records
// are cleared and repopulated inside one transaction, so a failure leaves the
// previous state intact. Unlike merge, a non-empty license key or device id
// in the envelope overwrites the local one. Title-less records are skipped.
func (p *PorterService) Import(ctx context.Context, data []byte) (int, error) {
	env, err := models.DecodeEnvelope(data)
	if err != nil {
		return 0, err
	}

	applied := 0
	err = dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := records.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for i := range env.Prompts {
			rec := env.Prompts[i]
			if rec.Title == "" {
				continue
			}
			p.normalize(&rec)
			if err := repo.Upsert(ctx, &rec); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: import: %v", common.ErrStorage, err)
	}

	if err := p.usage.Ratchet(ctx, env.Meta.UsageCount); err != nil {
		return applied, err
	}
	if env.Meta.LicenseKey != "" {
		if err := p.settings.Set(ctx, models.KeyLicenseKey, env.Meta.LicenseKey); err != nil {
			return applied, err
		}
	}
	if env.Meta.DeviceID != "" {
		if err := p.settings.Set(ctx, models.KeyDeviceID, env.Meta.DeviceID); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

// normalize fills in what older exports may lack so imported rows satisfy
// the same shape Save produces.
func (p *PorterService) normalize(rec *models.Record) {
	if rec.ID == "" {
		rec.ID = p.newID()
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.History == nil {
		rec.History = []models.HistorySnapshot{}
	}
	if rec.Version < 1 {
		rec.Version = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = p.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
}
