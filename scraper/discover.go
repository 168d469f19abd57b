package scraper

import (
	"context"
	"log/slog"
)

// ScanOutcome is the terminal state of a discovery scan.
type ScanOutcome int

const (
	// ScanTargetReached: the panel rendered at least the requested
	// number of entries; the result is truncated to exactly the target.
	ScanTargetReached ScanOutcome = iota

	// ScanExhausted: the entry count stopped growing between two
	// consecutive scrolls; the provider has no more results.
	ScanExhausted

	// ScanGaveUp: the iteration ceiling was hit before either condition
	// held. Entries rendered so far are still returned.
	ScanGaveUp
)

func (o ScanOutcome) String() string {
	switch o {
	case ScanTargetReached:
		return "target_reached"
	case ScanExhausted:
		return "exhausted"
	case ScanGaveUp:
		return "gave_up"
	default:
		return "unknown"
	}
}

// Discovery is the result of one listing scan.
type Discovery struct {
	Entries    []Entry
	Outcome    ScanOutcome
	Iterations int
}

// DiscoverListings scrolls the results panel until the rendered entry
// count either reaches target or stops growing, then enumerates the
// final entry set. Entries are deduplicated by their stable ID so a
// re-rendering panel cannot yield the same place twice.
//
// maxIterations bounds the loop independently of the count-based
// termination; when it trips the scan ends in ScanGaveUp rather than
// hanging on a panel that never stabilises. Pass 0 for no ceiling.
func DiscoverListings(ctx context.Context, panel ResultsPanel, target, maxIterations int) (*Discovery, error) {
	previous := 0

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxIterations > 0 && iteration > maxIterations {
			entries, err := finalEntries(ctx, panel, 0)
			if err != nil {
				return nil, err
			}
			slog.Warn("listing scan hit iteration ceiling",
				"iterations", maxIterations, "entries", len(entries))
			return &Discovery{Entries: entries, Outcome: ScanGaveUp, Iterations: iteration - 1}, nil
		}

		if err := panel.Scroll(ctx); err != nil {
			return nil, err
		}
		count, err := panel.Count(ctx)
		if err != nil {
			return nil, err
		}

		switch {
		case count >= target:
			entries, err := finalEntries(ctx, panel, target)
			if err != nil {
				return nil, err
			}
			return &Discovery{Entries: entries, Outcome: ScanTargetReached, Iterations: iteration}, nil

		case count == previous:
			entries, err := finalEntries(ctx, panel, 0)
			if err != nil {
				return nil, err
			}
			return &Discovery{Entries: entries, Outcome: ScanExhausted, Iterations: iteration}, nil

		default:
			slog.Debug("listing scan growing", "count", count, "previous", previous)
			previous = count
		}
	}
}

// finalEntries enumerates the panel, deduplicates by entry ID preserving
// discovery order, and truncates to limit when limit > 0.
func finalEntries(ctx context.Context, panel ResultsPanel, limit int) ([]Entry, error) {
	all, err := panel.Entries(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	entries := make([]Entry, 0, len(all))
	for _, e := range all {
		id := e.ID()
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		entries = append(entries, e)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
