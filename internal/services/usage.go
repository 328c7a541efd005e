package services

import (
	"context"
	"strconv"

	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

// UsageService maintains the monotonic lifetime counter of performed runs.
// The counter only ever grows: merge and import take the maximum of local
// and remote, never the sum.
type UsageService struct {
	settings settings.Repository
}

func NewUsageService(repo settings.Repository) *UsageService {
	return &UsageService{settings: repo}
}

// Get returns the current count. A missing or malformed stored value reads
// as zero.
func (s *UsageService) Get(ctx context.Context) (int64, error) {
	raw, err := s.settings.Get(ctx, models.KeySystemUsage)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *UsageService) Set(ctx context.Context, n int64) error {
	return s.settings.Set(ctx, models.KeySystemUsage, strconv.FormatInt(n, 10))
}

// Increment bumps the counter by one and returns the new value.
func (s *UsageService) Increment(ctx context.Context) (int64, error) {
	n, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	n++
	if err := s.Set(ctx, n); err != nil {
		return 0, err
	}
	return n, nil
}

// Ratchet raises the counter to n if n is larger than the stored value.
func (s *UsageService) Ratchet(ctx context.Context, n int64) error {
	cur, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if n > cur {
		return s.Set(ctx, n)
	}
	return nil
}
