package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/logging"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE records (
  id          TEXT PRIMARY KEY,
  title       TEXT NOT NULL,
  content     TEXT NOT NULL DEFAULT '',
  test_input  TEXT NOT NULL DEFAULT '',
  last_result TEXT NOT NULL DEFAULT '',
  tags        TEXT NOT NULL DEFAULT '[]',
  is_favorite INTEGER NOT NULL DEFAULT 0,
  is_deleted  INTEGER NOT NULL DEFAULT 0,
  version     INTEGER NOT NULL DEFAULT 1,
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL,
  history     TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE tombstones (
  id TEXT PRIMARY KEY
);
CREATE TABLE settings (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.Discard()
}

// fixedClock returns a clock that advances by one second per call, so
// successive saves get strictly increasing timestamps.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

// fakeTransport is an in-memory CloudTransport with call counters and
// injectable failures.
type fakeTransport struct {
	mu        sync.Mutex
	blob      []byte
	uploads   int
	downloads int

	uploadErr   error
	downloadErr error
}

func (f *fakeTransport) Upload(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.blob = append([]byte(nil), data...)
	return nil
}

func (f *fakeTransport) Download(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	if f.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), f.blob...), nil
}

type fakeVerifier struct {
	valid bool
	err   error

	lastKey      string
	lastDeviceID string
	calls        int
}

func (f *fakeVerifier) Verify(_ context.Context, key, deviceID string) (bool, error) {
	f.calls++
	f.lastKey = key
	f.lastDeviceID = deviceID
	return f.valid, f.err
}

type fakeGenerator struct {
	output string
	err    error

	lastPrompt string
	lastInput  string
	calls      int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, input string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastInput = input
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}
