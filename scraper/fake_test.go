package scraper

import (
	"context"
	"strings"

	"github.com/use-agent/mapscout/models"
)

// fakeView is a map-backed DetailView.
type fakeView struct {
	regions map[string]string            // selector -> text content
	attrs   map[string]map[string]string // selector -> attr -> value
	url     string
}

func (v *fakeView) Has(selector string) bool {
	if _, ok := v.regions[selector]; ok {
		return true
	}
	_, ok := v.attrs[selector]
	return ok
}

func (v *fakeView) Text(selector string) string {
	return strings.TrimSpace(v.regions[selector])
}

func (v *fakeView) Attr(selector, name string) (string, bool) {
	m, ok := v.attrs[selector]
	if !ok {
		return "", false
	}
	val, ok := m[name]
	return val, ok
}

func (v *fakeView) URL() string { return v.url }

// fullView builds a view with every field populated.
func fullView(name string) *fakeView {
	return &fakeView{
		regions: map[string]string{
			selAddress:     "1 Main St",
			selWebsite:     "example.com",
			selPhone:       "+1 555 0100",
			selReviewCount: "1,234 reviews",
		},
		attrs: map[string]map[string]string{
			selRating: {"aria-label": "4,5 stars"},
		},
		url: "https://www.google.com/maps/place/" + name + "/@12.34,-56.78,15z/data",
	}
}

// fakeEntry is an Entry whose activation yields a fixed view or error.
type fakeEntry struct {
	id    string
	label string
	view  DetailView
	err   error
}

func (e *fakeEntry) ID() string    { return e.id }
func (e *fakeEntry) Label() string { return e.label }

func (e *fakeEntry) Activate(ctx context.Context) (DetailView, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.view, nil
}

// fakePanel replays a scripted sequence of Count results.
type fakePanel struct {
	counts  []int
	calls   int
	entries []Entry
	scrolls int
}

func (p *fakePanel) Scroll(ctx context.Context) error {
	p.scrolls++
	return nil
}

func (p *fakePanel) Count(ctx context.Context) (int, error) {
	if p.calls < len(p.counts) {
		c := p.counts[p.calls]
		p.calls++
		return c, nil
	}
	if len(p.counts) == 0 {
		return 0, nil
	}
	return p.counts[len(p.counts)-1], nil
}

func (p *fakePanel) Entries(ctx context.Context) ([]Entry, error) {
	return p.entries, nil
}

// fakeSession serves scripted panels per query.
type fakeSession struct {
	panels    map[string]*fakePanel
	searchErr map[string]error
	closed    bool
}

func (s *fakeSession) Search(ctx context.Context, query string) (ResultsPanel, error) {
	if err := s.searchErr[query]; err != nil {
		return nil, err
	}
	panel, ok := s.panels[query]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "no panel scripted for "+query, nil)
	}
	return panel, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// entriesOf builds n healthy entries with distinct IDs.
func entriesOf(n int) []Entry {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		name := string(rune('a' + i%26))
		entries = append(entries, &fakeEntry{
			id:    "https://www.google.com/maps/place/" + name + string(rune('0'+i/26)),
			label: name,
			view:  fullView(name),
		})
	}
	return entries
}
