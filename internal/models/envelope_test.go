package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/common"
)

func TestDecodeEnvelope_ObjectForm(t *testing.T) {
	payload := []byte(`{
		"prompts": [{"id": "1", "title": "Greeting", "content": "hello", "version": 2}],
		"meta": {"exportedAt": "2024-05-01T10:00:00Z", "usageCount": 7, "licenseKey": "KEY-1", "deviceId": "dev-1"}
	}`)

	env, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Len(t, env.Prompts, 1)
	assert.Equal(t, "1", env.Prompts[0].ID)
	assert.Equal(t, int64(2), env.Prompts[0].Version)
	assert.Equal(t, int64(7), env.Meta.UsageCount)
	assert.Equal(t, "KEY-1", env.Meta.LicenseKey)
	assert.Equal(t, "dev-1", env.Meta.DeviceID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), env.Meta.ExportedAt)
}

func TestDecodeEnvelope_LegacyArrayForm(t *testing.T) {
	payload := []byte(`[{"id": "a", "title": "T", "content": "c"}]`)

	env, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Len(t, env.Prompts, 1)
	assert.Equal(t, "a", env.Prompts[0].ID)
	assert.Zero(t, env.Meta.UsageCount, "legacy form carries no meta")
	assert.Empty(t, env.Meta.LicenseKey)
}

func TestDecodeEnvelope_NullMetaFields(t *testing.T) {
	payload := []byte(`{"prompts": [], "meta": {"usageCount": 3, "licenseKey": null, "deviceId": null}}`)

	env, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.Meta.UsageCount)
	assert.Empty(t, env.Meta.LicenseKey)
	assert.Empty(t, env.Meta.DeviceID)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"scalar", `"hello"`},
		{"truncated object", `{"prompts": [`},
		{"truncated array", `[{"id":`},
		{"not json", "<html>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(tc.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidImport), "want ErrInvalidImport, got %v", err)
		})
	}
}

func TestEnvelope_EncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 30, 0, 0, time.UTC)
	env := &Envelope{
		Prompts: []Record{{
			ID:        "r1",
			Title:     "T",
			Content:   "body",
			Tags:      []string{"a", "b"},
			Version:   3,
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now,
			History: []HistorySnapshot{
				{Version: 1, Timestamp: now.Add(-time.Hour), Title: "T0", Content: "old"},
				{Version: 2, Timestamp: now.Add(-30 * time.Minute), Title: "T", Content: "mid"},
			},
		}},
		Meta: Meta{ExportedAt: now, UsageCount: 4, LicenseKey: "K", DeviceID: "D"},
	}

	data, err := env.Encode()
	require.NoError(t, err)

	got, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestRecord_ContentEquals(t *testing.T) {
	rec := &Record{Title: "T", Content: "c", TestInput: "in", Tags: []string{"x"}}

	assert.True(t, rec.ContentEquals("T", "c", "in", []string{"x"}))
	assert.False(t, rec.ContentEquals("T2", "c", "in", []string{"x"}))
	assert.False(t, rec.ContentEquals("T", "c2", "in", []string{"x"}))
	assert.False(t, rec.ContentEquals("T", "c", "in2", []string{"x"}))
	assert.False(t, rec.ContentEquals("T", "c", "in", []string{"x", "y"}))
	assert.False(t, rec.ContentEquals("T", "c", "in", nil))
}

func TestRecord_ContentEquals_NilVsEmptyTags(t *testing.T) {
	rec := &Record{Title: "T", Content: "c"}
	assert.True(t, rec.ContentEquals("T", "c", "", []string{}), "nil and empty tag slices are the same content")
}

func TestRecord_Snapshot(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	rec := &Record{
		ID: "1", Title: "T", Content: "c", TestInput: "i",
		Tags: []string{"t"}, Version: 2, CreatedAt: created, UpdatedAt: updated,
	}

	snap := rec.Snapshot()
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, updated, snap.Timestamp)
	assert.Equal(t, "T", snap.Title)
	assert.Equal(t, "c", snap.Content)
	assert.Equal(t, "i", snap.TestInput)
	assert.Equal(t, []string{"t"}, snap.Tags)

	// Mutating the record's tags must not leak into the snapshot.
	rec.Tags[0] = "changed"
	assert.Equal(t, []string{"t"}, snap.Tags)
}

func TestRecord_Snapshot_FallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &Record{ID: "1", Version: 1, CreatedAt: created}

	snap := rec.Snapshot()
	assert.Equal(t, created, snap.Timestamp)
}
