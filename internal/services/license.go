package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/logging"
	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
)

// LicenseVerifier checks a license key against the licensing backend.
type LicenseVerifier interface {
	Verify(ctx context.Context, key, deviceID string) (bool, error)
}

// HTTPVerifier talks to the license server over its query-parameter API.
type HTTPVerifier struct {
	URL    string
	Client *http.Client
}

func NewHTTPVerifier(serverURL string) *HTTPVerifier {
	return &HTTPVerifier{
		URL:    serverURL,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, key, deviceID string) (bool, error) {
	q := url.Values{}
	q.Set("action", "verify")
	q.Set("licenseKey", key)
	q.Set("deviceId", deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: license server: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: license server returned %s", common.ErrTransport, resp.Status)
	}

	var body struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("%w: decode verify response: %v", common.ErrTransport, err)
	}
	return body.Valid, nil
}

// LicenseService stores the license key and keeps the cached activation
// status in sync with the backend. Verification failures leave the cached
// status untouched so a network outage cannot deactivate an install.
type LicenseService struct {
	verifier LicenseVerifier
	settings settings.Repository
	system   *SettingsService
	log      logging.Logger
	wg       sync.WaitGroup
}

func NewLicenseService(verifier LicenseVerifier, repo settings.Repository, system *SettingsService, log logging.Logger) *LicenseService {
	return &LicenseService{verifier: verifier, settings: repo, system: system, log: log}
}

// Activate stores the key and verifies it immediately.
func (s *LicenseService) Activate(ctx context.Context, key string) (bool, error) {
	if err := s.settings.Set(ctx, models.KeyLicenseKey, key); err != nil {
		return false, err
	}
	return s.Refresh(ctx)
}

// Refresh re-verifies the stored key with the backend and updates the cached
// status. With no stored key it reports false without a network call.
func (s *LicenseService) Refresh(ctx context.Context) (bool, error) {
	key, err := s.settings.Get(ctx, models.KeyLicenseKey)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, nil
	}
	deviceID, err := s.system.DeviceID(ctx)
	if err != nil {
		return false, err
	}

	valid, err := s.verifier.Verify(ctx, key, deviceID)
	if err != nil {
		return false, err
	}

	status := models.LicenseInactive
	if valid {
		status = models.LicenseActive
	}
	if err := s.settings.Set(ctx, models.KeyLicenseStatus, status); err != nil {
		return valid, err
	}
	return valid, nil
}

// RefreshAsync re-verifies in the background, typically after a merge pulled
// in a license key from another device. Errors are logged only.
func (s *LicenseService) RefreshAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Warn(ctx, "background license refresh failed", "error", err)
		}
	}()
}

// Wait blocks until background refreshes have finished.
func (s *LicenseService) Wait() {
	s.wg.Wait()
}

// Status returns the cached license key and status.
func (s *LicenseService) Status(ctx context.Context) (key, status string, err error) {
	key, err = s.settings.Get(ctx, models.KeyLicenseKey)
	if err != nil {
		return "", "", err
	}
	status, err = s.settings.Get(ctx, models.KeyLicenseStatus)
	if err != nil {
		return "", "", err
	}
	return key, status, nil
}
