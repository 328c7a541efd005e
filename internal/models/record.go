// Package models defines the prompt record types and the backup envelope
// exchanged with the cloud transport.
package models

import (
	"slices"
	"time"
)

// Record is a single user-managed prompt with versioned content.
//
// Version starts at 1 and is incremented only when Title, Content, TestInput
// or Tags change materially against the stored copy. Every such increment
// appends a HistorySnapshot of the pre-change state, so History holds
// Version-1 entries for a record that has only been edited locally.
type Record struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	TestInput  string            `json:"testInput"`
	LastResult string            `json:"lastResult"`
	Tags       []string          `json:"tags"`
	IsFavorite bool              `json:"isFavorite"`
	IsDeleted  bool              `json:"isDeleted"`
	Version    int64             `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	History    []HistorySnapshot `json:"history"`
}

// HistorySnapshot is an immutable capture of a record's editable fields taken
// immediately before a version-incrementing save.
type HistorySnapshot struct {
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TestInput string    `json:"testInput"`
	Tags      []string  `json:"tags"`
}

// ContentEquals reports whether the record's versioned fields match the given
// values. Tag order matters; nil and empty slices compare equal.
func (r *Record) ContentEquals(title, content, testInput string, tags []string) bool {
	return r.Title == title &&
		r.Content == content &&
		r.TestInput == testInput &&
		slices.Equal(r.Tags, tags)
}

// Snapshot returns a HistorySnapshot of the record's current state.
func (r *Record) Snapshot() HistorySnapshot {
	ts := r.UpdatedAt
	if ts.IsZero() {
		ts = r.CreatedAt
	}
	return HistorySnapshot{
		Version:   r.Version,
		Timestamp: ts,
		Title:     r.Title,
		Content:   r.Content,
		TestInput: r.TestInput,
		Tags:      slices.Clone(r.Tags),
	}
}
