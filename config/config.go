package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Output    OutputConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server used in serve mode.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all browser traffic.
	Proxy string

	// EntryURL is the map search page the session opens first.
	EntryURL string // default: "https://www.google.com/maps"
}

// ScraperConfig controls the discovery and extraction pipeline.
type ScraperConfig struct {
	// DefaultTarget is the per-query entry cap used when the caller
	// specifies none. Effectively unbounded.
	DefaultTarget int // default: 1_000_000

	// MaxScanIterations bounds the scroll loop independently of the
	// count-based termination, so a panel that never stabilises cannot
	// hang the run.
	MaxScanIterations int // default: 200

	// WaitTimeout bounds each condition-based wait (DOM stable, element
	// appearance) before falling back to SettleDelay.
	WaitTimeout time.Duration // default: 10s

	// SettleDelay is the fixed fallback wait after a UI-mutating action
	// when no readiness signal converges in time.
	SettleDelay time.Duration // default: 2s

	// NavigationTimeout is the max time for the initial page load.
	NavigationTimeout time.Duration // default: 60s

	// QueriesPerMinute paces query submission against the shared session.
	QueriesPerMinute float64 // default: 12
}

// OutputConfig controls the file sinks.
type OutputConfig struct {
	// Dir is the directory batch files are written to, created if absent.
	Dir string // default: "output"

	// Formats lists the sinks to write per query.
	// default: ["csv", "xlsx"]
	Formats []string

	// DBPath enables SQLite persistence of all records when non-empty.
	DBPath string
}

// RateLimitConfig controls per-IP rate limiting in serve mode.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per client.
	Burst int // default: 3
}

// CacheConfig controls the per-query result cache in serve mode.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached query results.
	MaxEntries int // default: 256
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MAPSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("MAPSCOUT_PORT", 8080),
			Mode: envOr("MAPSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("MAPSCOUT_HEADLESS", true),
			NoSandbox:  envBoolOr("MAPSCOUT_NO_SANDBOX", false),
			BrowserBin: os.Getenv("MAPSCOUT_BROWSER_BIN"),
			Proxy:      os.Getenv("MAPSCOUT_PROXY"),
			EntryURL:   envOr("MAPSCOUT_ENTRY_URL", "https://www.google.com/maps"),
		},
		Scraper: ScraperConfig{
			DefaultTarget:     envIntOr("MAPSCOUT_DEFAULT_TARGET", 1_000_000),
			MaxScanIterations: envIntOr("MAPSCOUT_MAX_SCAN_ITERATIONS", 200),
			WaitTimeout:       envDurationOr("MAPSCOUT_WAIT_TIMEOUT", 10*time.Second),
			SettleDelay:       envDurationOr("MAPSCOUT_SETTLE_DELAY", 2*time.Second),
			NavigationTimeout: envDurationOr("MAPSCOUT_NAV_TIMEOUT", 60*time.Second),
			QueriesPerMinute:  envFloatOr("MAPSCOUT_QUERIES_PER_MINUTE", 12),
		},
		Output: OutputConfig{
			Dir:     envOr("MAPSCOUT_OUTPUT_DIR", "output"),
			Formats: envSliceOr("MAPSCOUT_OUTPUT_FORMATS", []string{"csv", "xlsx"}),
			DBPath:  os.Getenv("MAPSCOUT_DB_PATH"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MAPSCOUT_RATE_RPS", 1.0),
			Burst:             envIntOr("MAPSCOUT_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MAPSCOUT_CACHE_MAX_ENTRIES", 256),
		},
		Log: LogConfig{
			Level:  envOr("MAPSCOUT_LOG_LEVEL", "info"),
			Format: envOr("MAPSCOUT_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
