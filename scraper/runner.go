package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
	"github.com/use-agent/mapscout/output"
)

// Runner drives a batch of queries through one shared browser session:
// search, listing discovery, per-entry collection, then delivery of the
// finished batch to every configured sink.
type Runner struct {
	session Session
	sinks   []output.Sink
	target  int
	maxScan int
	limiter *rate.Limiter
}

// QueryReport is the per-query outcome of a run.
type QueryReport struct {
	Query   string
	Records models.RecordBatch
	Dropped int

	// Err is set when the query failed wholesale (navigation, timeout).
	// Per-entry failures are counted in Dropped instead.
	Err error
}

// NewRunner wires a runner over the given session and sinks. A target
// of zero or less falls back to the configured effectively-unbounded
// default (full-exhaustion mode).
func NewRunner(session Session, sinks []output.Sink, cfg config.ScraperConfig, target int) *Runner {
	if target <= 0 {
		target = cfg.DefaultTarget
	}
	qps := cfg.QueriesPerMinute / 60
	if qps <= 0 {
		qps = 1
	}
	return &Runner{
		session: session,
		sinks:   sinks,
		target:  target,
		maxScan: cfg.MaxScanIterations,
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
	}
}

// Run processes the queries strictly in order over the shared session.
//
// A failure in one query is reported and the remaining queries still
// run, unless the error marks the session itself as unusable
// (BROWSER_CRASH) or the context ends, in which case Run returns early
// with the reports accumulated so far.
func (r *Runner) Run(ctx context.Context, queries []string) ([]QueryReport, error) {
	reports := make([]QueryReport, 0, len(queries))

	for _, raw := range queries {
		query := strings.TrimSpace(raw)
		if query == "" {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return reports, err
		}

		report := r.runQuery(ctx, query)
		reports = append(reports, report)

		if report.Err != nil {
			if code := models.ErrCode(report.Err); code == models.ErrCodeBrowserCrash {
				slog.Error("session unusable, aborting remaining queries",
					"query", query, "error", report.Err)
				return reports, report.Err
			}
			slog.Error("query failed", "query", query, "error", report.Err)
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (r *Runner) runQuery(ctx context.Context, query string) QueryReport {
	report := QueryReport{Query: query}
	start := time.Now()
	slog.Info("query starting", "query", query, "target", r.target)

	panel, err := r.session.Search(ctx, query)
	if err != nil {
		report.Err = err
		return report
	}

	disc, err := DiscoverListings(ctx, panel, r.target, r.maxScan)
	if err != nil {
		report.Err = err
		return report
	}

	batch, failures := CollectRecords(ctx, disc.Entries)
	report.Records = batch
	report.Dropped = len(failures)

	for _, sink := range r.sinks {
		if err := sink.Write(query, batch); err != nil {
			report.Err = err
			return report
		}
	}

	slog.Info("query complete",
		"query", query,
		"records", len(batch),
		"dropped", len(failures),
		"outcome", disc.Outcome.String(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report
}
