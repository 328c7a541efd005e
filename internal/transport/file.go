package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/filex"
)

// FileTransport keeps the backup blob in a local file. Useful for backups to
// a mounted/synced folder and as the default when no bucket is configured.
type FileTransport struct {
	path string
}

func NewFileTransport(path string) *FileTransport {
	return &FileTransport{path: path}
}

func (t *FileTransport) Upload(ctx context.Context, data []byte) error {
	if _, err := filex.EnsureDir(filepath.Dir(t.path)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	if err := filex.WriteFileAtomic(t.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return nil
}

func (t *FileTransport) Download(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return data, nil
}
