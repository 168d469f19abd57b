package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/mapscout/config"
	"github.com/use-agent/mapscout/models"
)

// scrollDelta is the wheel distance of one scroll-down action over the
// results panel. Large on purpose: the panel virtualises rows and a big
// jump forces the next page of entries to render.
const scrollDelta = 10000

// BrowserSession drives one headless browser with a single page. It is
// the only Session implementation that talks to a real browser, and it
// is owned exclusively by the caller for the process lifetime; methods
// must not be called concurrently.
type BrowserSession struct {
	browser    *rod.Browser
	page       *rod.Page
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewSession launches a browser and opens the single page the whole
// batch shares. The page is left blank; call Open to load the map
// search interface.
func NewSession(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*BrowserSession, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// Stealth flags
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.MustClose()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}

	// Mask navigator.webdriver etc. before any navigation happens.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", evalErr,
		)
	}

	return &BrowserSession{
		browser:    browser,
		page:       page,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}, nil
}

// Open navigates to the map search interface and waits for it to render.
func (s *BrowserSession) Open(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(s.browserCfg.EntryURL); err != nil {
		return categorizeError(err, "navigation to entry URL failed")
	}

	// Search input becoming queryable is the readiness signal here.
	if _, err := p.Timeout(s.scraperCfg.WaitTimeout).Element(selSearchInput); err != nil {
		return categorizeError(err, "search input did not appear")
	}
	s.settle(ctx)
	slog.Info("map interface ready", "url", s.browserCfg.EntryURL)
	return nil
}

// Search types the query into the search input, submits it, and waits
// for the results panel to render.
func (s *BrowserSession) Search(ctx context.Context, query string) (ResultsPanel, error) {
	p := s.page.Context(ctx)

	el, err := p.Timeout(s.scraperCfg.WaitTimeout).Element(selSearchInput)
	if err != nil {
		return nil, categorizeError(err, "search input not found")
	}
	// Overwrite whatever the previous query left behind.
	if err := el.SelectAllText(); err != nil {
		return nil, categorizeError(err, "failed to select search input text")
	}
	if err := el.Input(query); err != nil {
		return nil, categorizeError(err, "failed to type query")
	}
	if err := p.Keyboard.Press(input.Enter); err != nil {
		return nil, categorizeError(err, "failed to submit query")
	}

	// Wait for at least one place link; a query with zero results will
	// time out here and fall back to the fixed settle delay, after
	// which Count legitimately reports zero.
	if err := p.Timeout(s.scraperCfg.WaitTimeout).WaitElementsMoreThan(selPlaceLink, 0); err != nil {
		slog.Debug("no place links appeared within wait timeout", "query", query, "error", err)
		s.settle(ctx)
	}

	// Hover a result so wheel events scroll the panel, not the map.
	if has, link, hasErr := p.Has(selPlaceLink); hasErr == nil && has {
		if hoverErr := link.Hover(); hoverErr != nil {
			slog.Debug("hover over results panel failed", "error", hoverErr)
		}
	}

	return &resultsPanel{s: s}, nil
}

// Close releases the page and kills the browser process. Call on every
// exit path to prevent zombie Chrome processes.
func (s *BrowserSession) Close() error {
	slog.Info("closing browser session")
	if err := s.page.Close(); err != nil {
		slog.Warn("failed to close page", "error", err)
	}
	return s.browser.Close()
}

// settle waits for the DOM to stop mutating after a UI-mutating action,
// falling back to the configured fixed delay when it never converges
// within the wait timeout.
func (s *BrowserSession) settle(ctx context.Context) {
	p := s.page.Context(ctx)
	if err := p.Timeout(s.scraperCfg.WaitTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilise, using fixed delay", "error", err)
		select {
		case <-time.After(s.scraperCfg.SettleDelay):
		case <-ctx.Done():
		}
	}
}

// resultsPanel adapts the shared page to the ResultsPanel capability.
type resultsPanel struct {
	s *BrowserSession
}

func (pn *resultsPanel) Scroll(ctx context.Context) error {
	p := pn.s.page.Context(ctx)
	if err := p.Mouse.Scroll(0, scrollDelta, 1); err != nil {
		return categorizeError(err, "scrolling results panel failed")
	}
	pn.s.settle(ctx)
	return nil
}

func (pn *resultsPanel) Count(ctx context.Context) (int, error) {
	els, err := pn.s.page.Context(ctx).Elements(selPlaceLink)
	if err != nil {
		return 0, categorizeError(err, "counting place links failed")
	}
	return len(els), nil
}

func (pn *resultsPanel) Entries(ctx context.Context) ([]Entry, error) {
	els, err := pn.s.page.Context(ctx).Elements(selPlaceLink)
	if err != nil {
		return nil, categorizeError(err, "enumerating place links failed")
	}

	entries := make([]Entry, 0, len(els))
	for _, el := range els {
		e := &pageEntry{
			s:     pn.s,
			el:    el,
			id:    attrOr(el, "href"),
			label: attrOr(el, "aria-label"),
		}
		// The accessible label sometimes lives on the container row
		// rather than the link itself.
		if row, parentErr := el.Parent(); parentErr == nil {
			e.el = row
			if e.label == "" {
				e.label = attrOr(row, "aria-label")
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// pageEntry is one place link resolved to its clickable container row.
type pageEntry struct {
	s     *BrowserSession
	el    *rod.Element
	id    string
	label string
}

func (e *pageEntry) ID() string    { return e.id }
func (e *pageEntry) Label() string { return e.label }

func (e *pageEntry) Activate(ctx context.Context) (DetailView, error) {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "clicking entry failed", err)
	}
	e.s.settle(ctx)
	return &detailView{s: e.s, ctx: ctx}, nil
}

// detailView adapts the shared page to the DetailView capability for
// the currently expanded place.
type detailView struct {
	s   *BrowserSession
	ctx context.Context
}

func (v *detailView) Has(selector string) bool {
	has, _, err := v.s.page.Context(v.ctx).Has(selector)
	return err == nil && has
}

func (v *detailView) Text(selector string) string {
	has, el, err := v.s.page.Context(v.ctx).Has(selector)
	if err != nil || !has {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (v *detailView) Attr(selector, name string) (string, bool) {
	has, el, err := v.s.page.Context(v.ctx).Has(selector)
	if err != nil || !has {
		return "", false
	}
	val, err := el.Attribute(name)
	if err != nil || val == nil {
		return "", false
	}
	return *val, true
}

func (v *detailView) URL() string {
	info, err := v.s.page.Context(v.ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// attrOr reads an attribute, swallowing errors and absence into "".
func attrOr(el *rod.Element, name string) string {
	val, err := el.Attribute(name)
	if err != nil || val == nil {
		return ""
	}
	return *val
}

// categorizeError wraps raw browser errors into typed ScrapeErrors so
// the runner can decide between skip-query and abort-run.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
