package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/promptkeep/promptkeep/internal/common"
)

// resolveID accepts a full record id or a unique prefix of one.
func (a *App) resolveID(ctx context.Context, arg string) (string, error) {
	if _, err := a.records.Get(ctx, arg); err == nil {
		return arg, nil
	}

	var matches []string
	for _, rec := range a.records.GetAll(ctx) {
		if strings.HasPrefix(rec.ID, arg) {
			matches = append(matches, rec.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: record %q", common.ErrNotFound, arg)
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d records", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// readSecret reads a value without echoing it to the terminal. Falls back to
// a plain line read when stdin is not a terminal, e.g. in a pipe.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
