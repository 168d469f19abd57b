package scraper

import (
	"context"
	"log/slog"

	"github.com/use-agent/mapscout/models"
)

// EntryFailure records one entry that was skipped during collection.
type EntryFailure struct {
	Index int
	Label string
	Err   error
}

// CollectRecords visits each discovered entry in order and extracts a
// place record from its detail view. A failure while activating,
// extracting or parsing one entry drops that entry only; the batch is
// the successfully extracted subset in discovery order, possibly empty.
// Skipped entries come back as diagnostics alongside the batch.
func CollectRecords(ctx context.Context, entries []Entry) (models.RecordBatch, []EntryFailure) {
	batch := make(models.RecordBatch, 0, len(entries))
	var failures []EntryFailure

	for i, entry := range entries {
		if ctx.Err() != nil {
			slog.Warn("collection interrupted",
				"collected", len(batch), "remaining", len(entries)-i)
			break
		}

		rec, err := collectOne(ctx, entry)
		if err != nil {
			slog.Warn("entry skipped",
				"index", i, "label", entry.Label(),
				"code", models.ErrCode(err), "error", err)
			failures = append(failures, EntryFailure{Index: i, Label: entry.Label(), Err: err})
			continue
		}
		batch = append(batch, rec)
	}

	return batch, failures
}

func collectOne(ctx context.Context, entry Entry) (models.PlaceRecord, error) {
	view, err := entry.Activate(ctx)
	if err != nil {
		return models.PlaceRecord{}, models.NewScrapeError(
			models.ErrCodeExtraction, "activating entry", err)
	}

	rec, err := ExtractFields(entry, view)
	if err != nil {
		return models.PlaceRecord{}, err
	}

	lat, lng, err := ParseCoordinates(view.URL())
	if err != nil {
		return models.PlaceRecord{}, err
	}
	rec.Latitude, rec.Longitude = &lat, &lng

	return rec, nil
}
