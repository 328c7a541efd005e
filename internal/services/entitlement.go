package services

import (
	"context"

	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

// TrialCeiling is the number of runs allowed without an active license.
const TrialCeiling = 10

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed   bool
	Remaining int64
	Reason    string
}

// EntitlementService gates metered operations: licensed installs are
// unlimited, unlicensed ones get a fixed trial quota counted by the usage
// ledger.
type EntitlementService struct {
	settings settings.Repository
	usage    *UsageService
}

func NewEntitlementService(repo settings.Repository, usage *UsageService) *EntitlementService {
	return &EntitlementService{settings: repo, usage: usage}
}

// IsEntitled reports whether the cached license status is active. It reads
// local state only and never calls the license server.
func (s *EntitlementService) IsEntitled(ctx context.Context) (bool, error) {
	status, err := s.settings.Get(ctx, models.KeyLicenseStatus)
	if err != nil {
		return false, err
	}
	return status == models.LicenseActive, nil
}

// CanPerform decides whether a metered operation may run right now.
// It does not consume quota; call RecordPerformed after the operation
// actually succeeds.
func (s *EntitlementService) CanPerform(ctx context.Context) (Decision, error) {
	entitled, err := s.IsEntitled(ctx)
	if err != nil {
		return Decision{}, err
	}
	if entitled {
		return Decision{Allowed: true, Remaining: -1}, nil
	}
	count, err := s.usage.Get(ctx)
	if err != nil {
		return Decision{}, err
	}
	if count < TrialCeiling {
		return Decision{Allowed: true, Remaining: TrialCeiling - count}, nil
	}
	return Decision{Reason: "trial limit reached, activate a license to continue"}, nil
}

// RecordPerformed counts one completed operation and returns the new total.
func (s *EntitlementService) RecordPerformed(ctx context.Context) (int64, error) {
	return s.usage.Increment(ctx)
}
