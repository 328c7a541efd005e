// Package transport defines the opaque cloud backup capability used by the
// sync coordinator, plus the S3 and local-file implementations.
//
// The remote side is a single blob: there is no per-record API. Implementations
// distinguish authentication failures (common.ErrAuthExpired) from other
// transport failures (common.ErrTransport) so the caller can prompt for
// re-authentication instead of retrying with a dead credential.
package transport

import "context"

// CloudTransport uploads and downloads the single backup blob.
type CloudTransport interface {
	// Upload replaces the remote backup with data.
	Upload(ctx context.Context, data []byte) error

	// Download returns the remote backup, or (nil, nil) when no backup
	// exists yet.
	Download(ctx context.Context) ([]byte, error)
}
