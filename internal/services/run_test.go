package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

func newRunEnv(t *testing.T, gen TextGenerator) (*RunService, *RecordService, *UsageService) {
	t.Helper()
	db := setupDB(t)
	recordSvc := NewRecordService(db, testLogger())
	recordSvc.now = fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	settingsRepo := settings.NewSQLiteRepository(db)
	usage := NewUsageService(settingsRepo)
	entitlement := NewEntitlementService(settingsRepo, usage)
	return NewRunService(recordSvc, entitlement, gen, testLogger()), recordSvc, usage
}

func TestRun_GeneratesAndStoresResult(t *testing.T) {
	gen := &fakeGenerator{output: "generated text"}
	svc, recordSvc, usage := newRunEnv(t, gen)
	ctx := context.Background()

	rec, err := recordSvc.Save(ctx, SaveRequest{Title: "T", Content: "prompt body", TestInput: "sample"})
	require.NoError(t, err)

	out, err := svc.Run(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
	assert.Equal(t, "prompt body", gen.lastPrompt)
	assert.Equal(t, "sample", gen.lastInput)

	got, err := recordSvc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "generated text", got.LastResult)
	// Storing the result is not a material change.
	assert.Equal(t, int64(1), got.Version)
	assert.Empty(t, got.History)

	n, err := usage.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRun_FailedGenerationConsumesNoQuota(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc, recordSvc, usage := newRunEnv(t, gen)
	ctx := context.Background()

	rec, err := recordSvc.Save(ctx, SaveRequest{Title: "T", Content: "c"})
	require.NoError(t, err)

	_, err = svc.Run(ctx, rec.ID)
	require.Error(t, err)

	n, err := usage.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_BlockedWhenTrialExhausted(t *testing.T) {
	gen := &fakeGenerator{output: "never reached"}
	svc, recordSvc, usage := newRunEnv(t, gen)
	ctx := context.Background()

	rec, err := recordSvc.Save(ctx, SaveRequest{Title: "T", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, usage.Set(ctx, TrialCeiling))

	_, err = svc.Run(ctx, rec.ID)
	assert.ErrorIs(t, err, common.ErrTrialExhausted)
	assert.Zero(t, gen.calls)
}

func TestRun_UnknownRecord(t *testing.T) {
	svc, _, _ := newRunEnv(t, &fakeGenerator{})
	_, err := svc.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
