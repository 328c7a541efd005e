package transport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTransport_DownloadMissingReturnsNilNil(t *testing.T) {
	tr := NewFileTransport(filepath.Join(t.TempDir(), "backup.json"))

	data, err := tr.Download(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data, "absent backup must be (nil, nil), not an error")
}

func TestFileTransport_UploadThenDownload(t *testing.T) {
	tr := NewFileTransport(filepath.Join(t.TempDir(), "backup.json"))
	ctx := context.Background()

	require.NoError(t, tr.Upload(ctx, []byte(`{"prompts":[]}`)))

	data, err := tr.Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"prompts":[]}`, string(data))
}

func TestFileTransport_UploadCreatesParentDir(t *testing.T) {
	tr := NewFileTransport(filepath.Join(t.TempDir(), "nested", "dir", "backup.json"))
	ctx := context.Background()

	require.NoError(t, tr.Upload(ctx, []byte("x")))

	data, err := tr.Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestFileTransport_UploadOverwrites(t *testing.T) {
	tr := NewFileTransport(filepath.Join(t.TempDir(), "backup.json"))
	ctx := context.Background()

	require.NoError(t, tr.Upload(ctx, []byte("one")))
	require.NoError(t, tr.Upload(ctx, []byte("two")))

	data, err := tr.Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
