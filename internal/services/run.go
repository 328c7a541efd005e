package services

import (
	"context"
	"fmt"

	"github.com/promptkeep/promptkeep/internal/common"
	"github.com/promptkeep/promptkeep/internal/logging"
)

// TextGenerator produces a completion for a prompt and its test input.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, input string) (string, error)
}

// RunService executes a stored prompt against a generator, gated by the
// entitlement check. The output is persisted as the record's lastResult,
// which by design does not version the record.
type RunService struct {
	records     *RecordService
	entitlement *EntitlementService
	generator   TextGenerator
	log         logging.Logger
}

func NewRunService(records *RecordService, entitlement *EntitlementService, generator TextGenerator, log logging.Logger) *RunService {
	return &RunService{records: records, entitlement: entitlement, generator: generator, log: log}
}

// Run generates output for the record with the given id. A failed generation
// consumes no quota; a successful one counts exactly once, even if storing
// the result afterwards fails.
func (s *RunService) Run(ctx context.Context, id string) (string, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return "", err
	}

	dec, err := s.entitlement.CanPerform(ctx)
	if err != nil {
		return "", err
	}
	if !dec.Allowed {
		return "", fmt.Errorf("%w: %s", common.ErrTrialExhausted, dec.Reason)
	}

	out, err := s.generator.Generate(ctx, rec.Content, rec.TestInput)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if _, err := s.entitlement.RecordPerformed(ctx); err != nil {
		s.log.Warn(ctx, "failed to record usage", "error", err)
	}

	if _, err := s.records.Save(ctx, SaveRequest{
		ID:         rec.ID,
		Title:      rec.Title,
		Content:    rec.Content,
		TestInput:  rec.TestInput,
		LastResult: out,
		Tags:       rec.Tags,
	}); err != nil {
		return out, fmt.Errorf("store result: %w", err)
	}
	return out, nil
}
