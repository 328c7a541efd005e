package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/logging"
	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/repositories/settings"
	"github.com/promptkeep/promptkeep/internal/repositories/tombstones"
	"github.com/promptkeep/promptkeep/internal/transport"
)

// SyncResult summarizes one completed sync cycle.
type SyncResult struct {
	// MergedCount is how many remote records were replayed into local state.
	MergedCount int
	// Pushed is how many records the final upload contained.
	Pushed int
}

// SyncService runs the pull-merge-push cycle against the cloud backup.
// A mutex serializes cycles and background pushes; local saves are never
// blocked by a sync in flight.
type SyncService struct {
	mu sync.Mutex
	wg sync.WaitGroup

	recordSvc  *RecordService
	porter     *PorterService
	usage      *UsageService
	settings   settings.Repository
	tombstones tombstones.Repository
	transport  transport.CloudTransport
	log        logging.Logger
}

func NewSyncService(
	recordSvc *RecordService,
	porter *PorterService,
	usage *UsageService,
	settingsRepo settings.Repository,
	tombstoneRepo tombstones.Repository,
	cloud transport.CloudTransport,
	log logging.Logger,
) *SyncService {
	return &SyncService{
		recordSvc:  recordSvc,
		porter:     porter,
		usage:      usage,
		settings:   settingsRepo,
		tombstones: tombstoneRepo,
		transport:  cloud,
		log:        log,
	}
}

// Sync runs one full cycle: download the remote envelope, merge it into
// local state, check the result did not lose data, and push the merged
// state back. Tombstones are cleared only after a successful push, since
// that push is the moment the deletions are reflected in the cloud copy.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.transport.Download(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}

	remoteCount := 0
	merged := 0
	if data != nil {
		env, err := models.DecodeEnvelope(data)
		if err != nil {
			// A corrupt backup must not block the cycle; the push below
			// replaces it with a good one.
			s.log.Warn(ctx, "remote backup is not a valid envelope, treating as empty", "error", err)
			env = &models.Envelope{}
		}
		remoteCount = len(env.Prompts)
		merged, err = s.merge(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}

	// The push is withheld only when the merge produced nothing at all out
	// of a non-empty backup. A local count merely below the remote count is
	// normal: tombstoned and title-less remote records are skipped on merge
	// and the push is what removes them from the backup.
	localCount, err := s.recordSvc.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if localCount == 0 && remoteCount > 0 {
		s.log.Error(ctx, "sync aborted before push", "remote_count", remoteCount)
		return nil, fmt.Errorf("%w: remote holds %d records", common.ErrSafetyAbort, remoteCount)
	}

	pushed, err := s.push(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	if err := s.tombstones.Clear(ctx); err != nil {
		return nil, fmt.Errorf("%w: clear tombstones: %v", common.ErrStorage, err)
	}

	s.log.Info(ctx, "sync completed", "merged", merged, "pushed", pushed)
	return &SyncResult{MergedCount: merged, Pushed: pushed}, nil
}

// merge replays remote records into local state through the regular save
// path, so remote edits version exactly like local ones. Records whose id
// is tombstoned locally are skipped, which is what keeps hard deletes from
// coming back. The usage counter ratchets to the larger value; license key
// and device id are adopted only when locally absent.
func (s *SyncService) merge(ctx context.Context, env *models.Envelope) (int, error) {
	buried, err := s.tombstones.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	skip := make(map[string]struct{}, len(buried))
	for _, id := range buried {
		skip[id] = struct{}{}
	}

	merged := 0
	for i := range env.Prompts {
		remote := env.Prompts[i]
		if remote.Title == "" {
			continue
		}
		if _, ok := skip[remote.ID]; ok {
			s.log.Debug(ctx, "skipping tombstoned record", "id", remote.ID)
			continue
		}
		fav := remote.IsFavorite
		del := remote.IsDeleted
		_, err := s.recordSvc.Save(ctx, SaveRequest{
			ID:         remote.ID,
			Title:      remote.Title,
			Content:    remote.Content,
			TestInput:  remote.TestInput,
			LastResult: remote.LastResult,
			Tags:       remote.Tags,
			IsFavorite: &fav,
			IsDeleted:  &del,
		})
		if err != nil {
			return merged, err
		}
		merged++
	}

	if err := s.usage.Ratchet(ctx, env.Meta.UsageCount); err != nil {
		return merged, err
	}
	if env.Meta.LicenseKey != "" {
		if err := s.adoptIfAbsent(ctx, models.KeyLicenseKey, env.Meta.LicenseKey); err != nil {
			return merged, err
		}
	}
	if env.Meta.DeviceID != "" {
		if err := s.adoptIfAbsent(ctx, models.KeyDeviceID, env.Meta.DeviceID); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func (s *SyncService) adoptIfAbsent(ctx context.Context, key, value string) error {
	cur, err := s.settings.Get(ctx, key)
	if err != nil {
		return err
	}
	if cur != "" {
		return nil
	}
	return s.settings.Set(ctx, key, value)
}

func (s *SyncService) push(ctx context.Context) (int, error) {
	env, err := s.porter.Export(ctx)
	if err != nil {
		return 0, err
	}
	data, err := env.Encode()
	if err != nil {
		return 0, err
	}
	if err := s.transport.Upload(ctx, data); err != nil {
		return 0, err
	}
	return len(env.Prompts), nil
}

// PushAsync uploads the current state in the background without merging
// first. Used after local saves so editing stays responsive; failures are
// retried with backoff and then only logged. Tombstones are left alone,
// the next full Sync clears them.
func (s *SyncService) PushAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, err := s.push(ctx); err != nil {
				if errors.Is(err, common.ErrAuthExpired) {
					return err
				}
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			s.log.Warn(ctx, "background push failed", "error", err)
		}
	}()
}

// Wait blocks until all background pushes have finished. Callers shutting
// down should call it before closing the database.
func (s *SyncService) Wait() {
	s.wg.Wait()
}
