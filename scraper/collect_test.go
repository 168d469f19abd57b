package scraper

import (
	"context"
	"errors"
	"testing"
)

func TestCollectRecords_FailedEntryIsSkipped(t *testing.T) {
	entries := []Entry{
		&fakeEntry{id: "id-1", label: "First", view: fullView("First")},
		&fakeEntry{id: "id-2", label: "Second", err: errors.New("detail pane never rendered")},
		&fakeEntry{id: "id-3", label: "Third", view: fullView("Third")},
	}

	batch, failures := CollectRecords(context.Background(), entries)

	if len(batch) != 2 {
		t.Fatalf("len(batch) = %d, want 2", len(batch))
	}
	if batch[0].Name != "First" || batch[1].Name != "Third" {
		t.Errorf("batch order = (%q, %q), want (First, Third)", batch[0].Name, batch[1].Name)
	}
	if len(failures) != 1 {
		t.Fatalf("len(failures) = %d, want 1", len(failures))
	}
	if failures[0].Index != 1 || failures[0].Label != "Second" {
		t.Errorf("failure = {%d %q}, want {1 Second}", failures[0].Index, failures[0].Label)
	}
	if failures[0].Err == nil {
		t.Error("failure.Err is nil, want the underlying error")
	}
}

func TestCollectRecords_BadCoordinatesDropRecord(t *testing.T) {
	noCoords := fullView("Lost")
	noCoords.url = "https://www.google.com/maps/place/Lost" // no coordinate marker

	entries := []Entry{
		&fakeEntry{id: "id-1", label: "Lost", view: noCoords},
		&fakeEntry{id: "id-2", label: "Found", view: fullView("Found")},
	}

	batch, failures := CollectRecords(context.Background(), entries)

	if len(batch) != 1 {
		t.Fatalf("len(batch) = %d, want 1", len(batch))
	}
	if batch[0].Name != "Found" {
		t.Errorf("batch[0].Name = %q, want Found", batch[0].Name)
	}
	if len(failures) != 1 || failures[0].Index != 0 {
		t.Fatalf("failures = %+v, want one failure at index 0", failures)
	}
}

func TestCollectRecords_SetsBothCoordinates(t *testing.T) {
	entries := []Entry{
		&fakeEntry{id: "id-1", label: "Here", view: fullView("Here")},
	}

	batch, failures := CollectRecords(context.Background(), entries)
	if len(failures) != 0 {
		t.Fatalf("failures = %+v, want none", failures)
	}
	if len(batch) != 1 {
		t.Fatalf("len(batch) = %d, want 1", len(batch))
	}

	rec := batch[0]
	if rec.Latitude == nil || rec.Longitude == nil {
		t.Fatal("Latitude/Longitude not both set")
	}
	if *rec.Latitude != 12.34 || *rec.Longitude != -56.78 {
		t.Errorf("coordinates = (%v, %v), want (12.34, -56.78)", *rec.Latitude, *rec.Longitude)
	}
}

func TestCollectRecords_Empty(t *testing.T) {
	batch, failures := CollectRecords(context.Background(), nil)
	if batch == nil {
		t.Fatal("batch is nil, want empty non-nil batch")
	}
	if len(batch) != 0 || len(failures) != 0 {
		t.Errorf("got %d records, %d failures, want 0, 0", len(batch), len(failures))
	}
}

func TestCollectRecords_CancelledContextStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := entriesOf(3)
	batch, failures := CollectRecords(ctx, entries)

	if len(batch) != 0 || len(failures) != 0 {
		t.Errorf("got %d records, %d failures after cancel, want 0, 0", len(batch), len(failures))
	}
}
