// ABOUTME: Import of sessions and migration between ledger backends.
// ABOUTME: Writes every session through the index protocol, preserving IDs.
package tracker

import (
	"context"
	"fmt"

	"github.com/harperreed/rehab/internal/codec"
	"github.com/harperreed/rehab/internal/models"
)

// ImportSummary holds counts from an import or migration.
type ImportSummary struct {
	Imported   int
	Existing   int
	Unreadable int
}

// Import stores sessions that are not yet indexed, keeping their IDs.
// A corrupt destination index stops the import rather than being overwritten.
func (t *Tracker) Import(ctx context.Context, sessions []models.Session) (*ImportSummary, error) {
	if err := validateImport(sessions); err != nil {
		return nil, fmt.Errorf("invalid import: %w", err)
	}

	ids, err := t.idx.ListIdentifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destination sessions: %w", err)
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	summary := &ImportSummary{}
	for _, s := range sessions {
		if s.ID == "" {
			return summary, fmt.Errorf("import session %q: missing id", s.ExerciseType)
		}
		if known[s.ID] {
			summary.Existing++
			continue
		}
		if err := t.store(ctx, s); err != nil {
			return summary, fmt.Errorf("import session %s: %w", s.ID, err)
		}
		known[s.ID] = true
		summary.Imported++
	}
	return summary, nil
}

// Migrate copies every readable session from src into dst.
// With dryRun set, nothing is written and Imported counts what would be.
func Migrate(ctx context.Context, src, dst *Tracker, dryRun bool) (*ImportSummary, error) {
	// Source index order, so ties in timestamp list the same way on both sides.
	sessions, skipped, err := src.collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if dryRun {
		return &ImportSummary{Imported: len(sessions), Unreadable: skipped}, nil
	}

	summary, err := dst.Import(ctx, sessions)
	if summary != nil {
		summary.Unreadable = skipped
	}
	return summary, err
}

// validateImport checks every session before any write happens.
func validateImport(sessions []models.Session) error {
	for _, s := range sessions {
		if _, err := codec.Encode(s); err != nil {
			return err
		}
	}
	return nil
}
