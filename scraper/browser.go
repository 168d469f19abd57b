package scraper

import "context"

// Session is the shared browser capability the batch runner drives.
// Exactly one implementation talks to a real browser (BrowserSession);
// tests substitute fakes.
type Session interface {
	// Search submits a query to the map search input and returns the
	// results panel once the provider has rendered it.
	Search(ctx context.Context, query string) (ResultsPanel, error)

	// Close releases the underlying browser. Safe to call once.
	Close() error
}

// ResultsPanel is the scrollable list of entries for one query.
type ResultsPanel interface {
	// Scroll triggers one scroll-down action and lets the UI settle.
	Scroll(ctx context.Context) error

	// Count reports how many place entries are currently rendered.
	Count(ctx context.Context) (int, error)

	// Entries enumerates the rendered entries, each resolved to its
	// clickable container row.
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is one discoverable item in the results panel.
type Entry interface {
	// ID is a stable identity for deduplication across scroll passes,
	// typically the entry's detail-page link.
	ID() string

	// Label is the entry's accessible label; empty when absent.
	Label() string

	// Activate selects the entry so its detail view loads.
	Activate(ctx context.Context) (DetailView, error)
}

// DetailView is the expanded pane showing one entry's attributes.
// All reads are best-effort: absence degrades to the zero value.
type DetailView interface {
	// Has reports whether a region matching the selector exists.
	Has(selector string) bool

	// Text returns the trimmed text content of the first matching
	// region, or "" when the region is absent or empty.
	Text(selector string) string

	// Attr returns the named attribute of the first matching region and
	// whether it was present.
	Attr(selector, name string) (string, bool)

	// URL is the page's current navigation URL.
	URL() string
}
