package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

// SettingsService wraps the settings table with the few typed accessors the
// rest of the app needs: the per-install device id and provider API keys.
type SettingsService struct {
	settings settings.Repository

	newID func() string
}

func NewSettingsService(repo settings.Repository) *SettingsService {
	return &SettingsService{settings: repo, newID: uuid.NewString}
}

// DeviceID returns the stable per-installation identifier, generating and
// persisting one on first use. It never changes afterwards, also not across
// merges.
func (s *SettingsService) DeviceID(ctx context.Context) (string, error) {
	id, err := s.settings.Get(ctx, models.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = s.newID()
	if err := s.settings.Set(ctx, models.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func (s *SettingsService) APIKey(ctx context.Context, provider string) (string, error) {
	return s.settings.Get(ctx, models.KeyAPIKeyPrefix+provider)
}

func (s *SettingsService) SetAPIKey(ctx context.Context, provider, key string) error {
	return s.settings.Set(ctx, models.KeyAPIKeyPrefix+provider, key)
}

// APIKeyProviders lists providers that have a stored key. Key material is
// not returned.
func (s *SettingsService) APIKeyProviders(ctx context.Context) ([]string, error) {
	all, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(all))
	for k := range all {
		if strings.HasPrefix(k, models.KeyAPIKeyPrefix) {
			providers = append(providers, strings.TrimPrefix(k, models.KeyAPIKeyPrefix))
		}
	}
	return providers, nil
}
