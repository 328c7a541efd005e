// Package common defines shared constants and sentinel errors used across
// PromptKeep layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Storage write-path errors. Reads degrade to empty results instead.
	ErrStorage = errors.New("storage failure")

	// Cloud transport errors. ErrAuthExpired is a transport failure that
	// requires the user to re-authenticate before the next attempt.
	ErrTransport   = errors.New("cloud transport failure")
	ErrAuthExpired = errors.New("cloud credentials expired")

	// ErrSafetyAbort is returned by a sync cycle that merged an empty local
	// store against a non-empty remote backup. The push is skipped so the
	// backup is never overwritten with nothing.
	ErrSafetyAbort = errors.New("sync aborted: local store empty, remote backup is not")

	// Import / envelope decoding errors.
	ErrInvalidImport = errors.New("invalid import payload")

	// Entitlement errors.
	ErrTrialExhausted = errors.New("trial limit reached")
)
