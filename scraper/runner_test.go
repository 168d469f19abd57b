package scraper

import (
	"context"
	"testing"

	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
	"github.com/use-agent/mapscout/output"
)

// memorySink captures delivered batches keyed by query.
type memorySink struct {
	batches map[string]models.RecordBatch
	writes  int
}

func newMemorySink() *memorySink {
	return &memorySink{batches: make(map[string]models.RecordBatch)}
}

func (m *memorySink) Write(query string, batch models.RecordBatch) error {
	m.batches[query] = batch
	m.writes++
	return nil
}

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		DefaultTarget:     1_000_000,
		MaxScanIterations: 50,
		QueriesPerMinute:  6000, // effectively no pacing in tests
	}
}

func TestRunner_DeliversBatchToSink(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"coffee shops": {counts: []int{2, 2}, entries: entriesOf(2)},
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 0)
	reports, err := runner.Run(context.Background(), []string{"coffee shops"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].Err != nil {
		t.Fatalf("report.Err = %v, want nil", reports[0].Err)
	}
	if len(reports[0].Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(reports[0].Records))
	}

	batch, ok := sink.batches["coffee shops"]
	if !ok {
		t.Fatal("sink never received the batch")
	}
	if len(batch) != 2 {
		t.Errorf("sink batch size = %d, want 2", len(batch))
	}
}

func TestRunner_EmptyResultStillDelivered(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"nothing here": {counts: []int{0}},
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 0)
	reports, err := runner.Run(context.Background(), []string{"nothing here"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 1 || reports[0].Err != nil {
		t.Fatalf("reports = %+v, want one clean report", reports)
	}
	batch, ok := sink.batches["nothing here"]
	if !ok {
		t.Fatal("empty batch was not delivered to the sink")
	}
	if len(batch) != 0 {
		t.Errorf("len(batch) = %d, want 0", len(batch))
	}
}

func TestRunner_QueryFailureDoesNotStopBatch(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"good query": {counts: []int{1}, entries: entriesOf(1)},
		},
		searchErr: map[string]error{
			"bad query": models.NewScrapeError(models.ErrCodeNavigation, "results never appeared", nil),
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 0)
	reports, err := runner.Run(context.Background(), []string{"bad query", "good query"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}
	if reports[0].Err == nil {
		t.Error("reports[0].Err is nil, want navigation error")
	}
	if reports[1].Err != nil {
		t.Errorf("reports[1].Err = %v, want nil", reports[1].Err)
	}
	if _, ok := sink.batches["good query"]; !ok {
		t.Error("second query's batch was not delivered")
	}
}

func TestRunner_BrowserCrashAborts(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"never runs": {counts: []int{1}, entries: entriesOf(1)},
		},
		searchErr: map[string]error{
			"crashing query": models.NewScrapeError(models.ErrCodeBrowserCrash, "browser process exited", nil),
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 0)
	reports, err := runner.Run(context.Background(), []string{"crashing query", "never runs"})

	if err == nil {
		t.Fatal("Run succeeded, want browser crash error")
	}
	if code := models.ErrCode(err); code != models.ErrCodeBrowserCrash {
		t.Errorf("error code = %s, want %s", code, models.ErrCodeBrowserCrash)
	}
	if len(reports) != 1 {
		t.Errorf("len(reports) = %d, want 1 (remaining queries skipped)", len(reports))
	}
	if sink.writes != 0 {
		t.Errorf("sink.writes = %d, want 0", sink.writes)
	}
}

func TestRunner_BlankQueriesSkipped(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"real": {counts: []int{1}, entries: entriesOf(1)},
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 0)
	reports, err := runner.Run(context.Background(), []string{"", "   ", "real"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].Query != "real" {
		t.Errorf("reports[0].Query = %q, want real", reports[0].Query)
	}
}

func TestRunner_LimitTruncatesBatch(t *testing.T) {
	session := &fakeSession{
		panels: map[string]*fakePanel{
			"popular": {counts: []int{5, 12, 25}, entries: entriesOf(25)},
		},
	}
	sink := newMemorySink()

	runner := NewRunner(session, []output.Sink{sink}, testScraperConfig(), 20)
	reports, err := runner.Run(context.Background(), []string{"popular"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports[0].Records) != 20 {
		t.Errorf("len(Records) = %d, want 20", len(reports[0].Records))
	}
}

func TestNewRunner_DefaultTarget(t *testing.T) {
	cfg := testScraperConfig()
	runner := NewRunner(&fakeSession{}, nil, cfg, 0)
	if runner.target != cfg.DefaultTarget {
		t.Errorf("target = %d, want default %d", runner.target, cfg.DefaultTarget)
	}

	runner = NewRunner(&fakeSession{}, nil, cfg, 30)
	if runner.target != 30 {
		t.Errorf("target = %d, want 30", runner.target)
	}
}
