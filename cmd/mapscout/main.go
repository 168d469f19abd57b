package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/mapscout/api"
	"github.com/use-agent/mapscout/cache"
	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
	"github.com/use-agent/mapscout/output"
	"github.com/use-agent/mapscout/scraper"
	"github.com/use-agent/mapscout/storage"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	if err := newRootCmd(cfg).Execute(); err != nil {
		slog.Error("mapscout failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		query     string
		inputPath string
		limit     int
		outDir    string
		dbPath    string
	)

	root := &cobra.Command{
		Use:           "mapscout",
		Short:         "Scrape place data from Google Maps search results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir != "" {
				cfg.Output.Dir = outDir
			}
			if dbPath != "" {
				cfg.Output.DBPath = dbPath
			}
			return runScrape(cmd.Context(), cfg, query, inputPath, limit)
		},
	}

	root.Flags().StringVarP(&query, "query", "q", "", "single search query")
	root.Flags().StringVarP(&inputPath, "input", "i", "input.txt", "file with one query per line, used when --query is not given")
	root.Flags().IntVarP(&limit, "limit", "t", 0, "max entries per query (0 = all available)")
	root.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default \"output\")")
	root.Flags().StringVar(&dbPath, "db", "", "also persist records to this SQLite database")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Expose the scraping pipeline over an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}
	root.AddCommand(serve)

	return root
}

// runScrape is the batch path: load queries, open one session, run the
// batch, report a summary.
func runScrape(parent context.Context, cfg *config.Config, query, inputPath string, limit int) error {
	queries, err := loadQueries(query, inputPath)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(cfg.Output)
	if err != nil {
		return err
	}
	defer closeSinks()

	session, err := scraper.NewSession(cfg.Browser, cfg.Scraper)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			slog.Warn("closing session", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Open(ctx); err != nil {
		return err
	}

	runner := scraper.NewRunner(session, sinks, cfg.Scraper, limit)
	reports, runErr := runner.Run(ctx, queries)

	var records, dropped, failed int
	for _, r := range reports {
		records += len(r.Records)
		dropped += r.Dropped
		if r.Err != nil {
			failed++
		}
	}
	slog.Info("batch finished",
		"queries", len(reports),
		"records", records,
		"dropped", dropped,
		"failed_queries", failed,
		"output_dir", cfg.Output.Dir,
	)
	return runErr
}

// runServe starts the HTTP API over one long-lived browser session.
func runServe(cfg *config.Config) error {
	session, err := scraper.NewSession(cfg.Browser, cfg.Scraper)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			slog.Warn("closing session", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Open(ctx); err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(cfg.Output)
	if err != nil {
		return err
	}
	defer closeSinks()

	cc := cache.New(cfg.Cache.MaxEntries)
	router := api.NewRouter(session, sinks, cfg, cc, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	return nil
}

// loadQueries resolves the query batch: the --query flag wins, else the
// input file, one trimmed query per line. Neither available is a fatal
// input error.
func loadQueries(query, inputPath string) ([]string, error) {
	if query != "" {
		return []string{query}, nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInput,
			fmt.Sprintf("you must either pass --query, or add searches to %s", inputPath), err)
	}

	var queries []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInput,
			fmt.Sprintf("%s contains no queries", inputPath), nil)
	}
	return queries, nil
}

// buildSinks assembles the configured sinks. The returned closer
// releases the SQLite store when one was opened.
func buildSinks(cfg config.OutputConfig) ([]output.Sink, func(), error) {
	var sinks []output.Sink
	for _, format := range cfg.Formats {
		switch format {
		case "csv":
			sinks = append(sinks, &output.CSVSink{Dir: cfg.Dir})
		case "xlsx":
			sinks = append(sinks, &output.XLSXSink{Dir: cfg.Dir})
		default:
			return nil, nil, models.NewScrapeError(models.ErrCodeInvalidInput,
				fmt.Sprintf("unknown output format %q", format), nil)
		}
	}

	closer := func() {}
	if cfg.DBPath != "" {
		store, err := storage.NewStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closer = func() {
			if err := store.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				slog.Warn("closing store", "error", err)
			}
		}
	}
	return sinks, closer, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
