package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

func newPorterEnv(t *testing.T) (*PorterService, *RecordService, settings.Repository, *UsageService) {
	t.Helper()
	db := setupDB(t)
	recordSvc := NewRecordService(db, testLogger())
	recordSvc.now = fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	settingsRepo := settings.NewSQLiteRepository(db)
	usage := NewUsageService(settingsRepo)
	return NewPorterService(db, settingsRepo, usage), recordSvc, settingsRepo, usage
}

func TestExport_CarriesRecordsAndMeta(t *testing.T) {
	porter, recordSvc, settingsRepo, usage := newPorterEnv(t)
	ctx := context.Background()

	a, err := recordSvc.Save(ctx, SaveRequest{Title: "A", Content: "a"})
	require.NoError(t, err)
	require.NoError(t, recordSvc.SoftDelete(ctx, a.ID))
	_, err = recordSvc.Save(ctx, SaveRequest{Title: "B", Content: "b"})
	require.NoError(t, err)

	require.NoError(t, usage.Set(ctx, 4))
	require.NoError(t, settingsRepo.Set(ctx, models.KeyLicenseKey, "KEY"))
	require.NoError(t, settingsRepo.Set(ctx, models.KeyDeviceID, "dev-1"))

	env, err := porter.Export(ctx)
	require.NoError(t, err)

	// Soft-deleted records travel with the export.
	assert.Len(t, env.Prompts, 2)
	assert.Equal(t, int64(4), env.Meta.UsageCount)
	assert.Equal(t, "KEY", env.Meta.LicenseKey)
	assert.Equal(t, "dev-1", env.Meta.DeviceID)
	assert.False(t, env.Meta.ExportedAt.IsZero())
}

func TestExport_EmptyVault(t *testing.T) {
	porter, _, _, _ := newPorterEnv(t)

	env, err := porter.Export(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, env.Prompts)
	assert.Empty(t, env.Prompts)
}

func TestImport_ReplacesLocalRecords(t *testing.T) {
	porter, recordSvc, _, _ := newPorterEnv(t)
	ctx := context.Background()

	_, err := recordSvc.Save(ctx, SaveRequest{Title: "Old", Content: "gone after import"})
	require.NoError(t, err)

	data := []byte(`{
  "prompts": [
    {"id": "p1", "title": "One", "content": "c1", "version": 2},
    {"id": "p2", "title": "", "content": "skipped"},
    {"title": "No ID", "content": "gets one"}
  ],
  "meta": {"usageCount": 6, "licenseKey": "K2", "deviceId": "dev-2"}
}`)

	applied, err := porter.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	list := recordSvc.GetAll(ctx)
	require.Len(t, list, 2)
	for _, rec := range list {
		assert.NotEqual(t, "Old", rec.Title)
		assert.NotEmpty(t, rec.ID)
		assert.GreaterOrEqual(t, rec.Version, int64(1))
		assert.NotNil(t, rec.Tags)
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestImport_OverwritesLicenseAndDevice(t *testing.T) {
	porter, _, settingsRepo, usage := newPorterEnv(t)
	ctx := context.Background()

	require.NoError(t, settingsRepo.Set(ctx, models.KeyLicenseKey, "LOCAL"))
	require.NoError(t, settingsRepo.Set(ctx, models.KeyDeviceID, "dev-local"))
	require.NoError(t, usage.Set(ctx, 9))

	data := []byte(`{"prompts": [], "meta": {"usageCount": 4, "licenseKey": "RESTORED", "deviceId": "dev-restored"}}`)
	_, err := porter.Import(ctx, data)
	require.NoError(t, err)

	key, err := settingsRepo.Get(ctx, models.KeyLicenseKey)
	require.NoError(t, err)
	assert.Equal(t, "RESTORED", key)
	dev, err := settingsRepo.Get(ctx, models.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, "dev-restored", dev)

	// Usage still ratchets, never lowers.
	n, err := usage.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
}

func TestImport_LegacyArray(t *testing.T) {
	porter, recordSvc, _, _ := newPorterEnv(t)
	ctx := context.Background()

	applied, err := porter.Import(ctx, []byte(`[{"id":"l1","title":"Legacy","content":"c"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	got, err := recordSvc.Get(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
}

func TestImport_MalformedPayloadLeavesStateIntact(t *testing.T) {
	porter, recordSvc, _, _ := newPorterEnv(t)
	ctx := context.Background()

	rec, err := recordSvc.Save(ctx, SaveRequest{Title: "Keep", Content: "c"})
	require.NoError(t, err)

	_, err = porter.Import(ctx, []byte("garbage"))
	assert.ErrorIs(t, err, common.ErrInvalidImport)

	_, err = recordSvc.Get(ctx, rec.ID)
	require.NoError(t, err)
}

func TestExportImport_RoundTrip(t *testing.T) {
	porter, recordSvc, _, _ := newPorterEnv(t)
	ctx := context.Background()

	rec, err := recordSvc.Save(ctx, SaveRequest{Title: "T", Content: "v1"})
	require.NoError(t, err)
	rec, err = recordSvc.Save(ctx, SaveRequest{ID: rec.ID, Title: "T", Content: "v2"})
	require.NoError(t, err)

	env, err := porter.Export(ctx)
	require.NoError(t, err)
	data, err := env.Encode()
	require.NoError(t, err)

	applied, err := porter.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	got, err := recordSvc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	require.Len(t, got.History, 1)
	assert.Equal(t, "v1", got.History[0].Content)
}
