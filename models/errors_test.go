package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestScrapeError_Error(t *testing.T) {
	bare := NewScrapeError(ErrCodeTimeout, "results never appeared", nil)
	if got := bare.Error(); got != "SCRAPE_TIMEOUT: results never appeared" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := NewScrapeError(ErrCodeNavigation, "loading maps", errors.New("net down"))
	if got := wrapped.Error(); got != "NAVIGATION_FAILED: loading maps: net down" {
		t.Errorf("Error() = %q", got)
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	inner := errors.New("net down")
	wrapped := NewScrapeError(ErrCodeNavigation, "loading maps", inner)

	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is failed to reach the wrapped error")
	}
}

func TestErrCode(t *testing.T) {
	scrapeErr := NewScrapeError(ErrCodeParse, "bad coords", nil)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "direct", err: scrapeErr, want: ErrCodeParse},
		{name: "wrapped once", err: fmt.Errorf("collecting: %w", scrapeErr), want: ErrCodeParse},
		{
			name: "wrapped twice",
			err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", scrapeErr)),
			want: ErrCodeParse,
		},
		{name: "plain error", err: errors.New("boom"), want: ErrCodeInternal},
		{name: "nil", err: nil, want: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrCode(tt.err); got != tt.want {
				t.Errorf("ErrCode = %s, want %s", got, tt.want)
			}
		})
	}
}
