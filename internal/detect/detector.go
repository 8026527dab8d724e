// Package detect implements the ticket availability check: positive
// evidence rules evaluated against a rendered page, fail-closed on any
// internal error.
package detect

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/metrics"
)

// Session is a rendered page with its debug artifacts, owned by a
// single check and released when the check ends.
type Session interface {
	Document
	HTML(ctx context.Context) ([]byte, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Renderer opens a Session for a URL.
type Renderer interface {
	Render(ctx context.Context, url string) (Session, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, url string) (Session, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, url string) (Session, error) {
	return f(ctx, url)
}

// Signal is one check's outcome plus the diagnostic counts behind it.
// The counts are logged, never persisted.
type Signal struct {
	Available         bool
	BuyMatches        int
	ComingSoonMatches int
	Rule              string // name of the matching rule, empty if none
}

var comingSoonPhrases = []string{"COMING SOON", "Coming Soon"}

// Detector checks a page for ticket availability.
type Detector struct {
	renderer Renderer
	sink     ArtifactSink
	rules    []Rule
	log      *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.log = l }
}

// WithArtifactSink sets where screenshots and page dumps go.
func WithArtifactSink(s ArtifactSink) Option {
	return func(d *Detector) { d.sink = s }
}

// WithRules replaces the default detection rules.
func WithRules(rules []Rule) Option {
	return func(d *Detector) { d.rules = rules }
}

// New creates a Detector. By default artifacts are discarded and the
// default rules apply.
func New(r Renderer, opts ...Option) *Detector {
	d := &Detector{
		renderer: r,
		sink:     Discard{},
		rules:    DefaultRules(5),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect renders the page and evaluates the detection rules in order.
// It never returns an error: any internal failure is logged and reported
// as "not available", so a bad run only delays the alert until the next
// scheduled check rather than paging anyone spuriously.
func (d *Detector) Detect(ctx context.Context, pageURL string) Signal {
	start := time.Now()
	metrics.ChecksTotal.Inc()
	defer func() {
		metrics.CheckDuration.Observe(time.Since(start).Seconds())
	}()

	d.log.Info("starting availability check", "url", pageURL)

	sess, err := d.renderer.Render(ctx, pageURL)
	if err != nil {
		d.log.Error("render failed", "url", pageURL, "error", err)
		metrics.CheckErrorsTotal.Inc()
		return Signal{}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			d.log.Warn("closing browser session", "error", cerr)
		}
	}()

	d.saveArtifacts(ctx, sess)

	sig := d.evaluate(ctx, sess)
	if sig.Available {
		metrics.DetectionsTotal.Inc()
	}
	return sig
}

func (d *Detector) evaluate(ctx context.Context, doc Document) Signal {
	var sig Signal

	text, err := doc.Text(ctx)
	if err != nil {
		d.log.Error("reading page text", "error", err)
		metrics.CheckErrorsTotal.Inc()
		return Signal{}
	}

	sig.BuyMatches = countOccurrences(text, BuyPhrases)
	sig.ComingSoonMatches = countOccurrences(text, comingSoonPhrases)
	d.log.Info("page inspected",
		"buy_matches", sig.BuyMatches,
		"coming_soon_matches", sig.ComingSoonMatches,
	)

	for _, rule := range d.rules {
		matched, err := rule.Evaluate(ctx, doc)
		if err != nil {
			d.log.Error("rule evaluation failed", "rule", rule.Name(), "error", err)
			continue
		}
		if matched {
			sig.Available = true
			sig.Rule = rule.Name()
			d.log.Info("tickets available", "rule", rule.Name())
			return sig
		}
	}

	d.log.Info("tickets not available yet")
	return sig
}

func (d *Detector) saveArtifacts(ctx context.Context, sess Session) {
	if shot, err := sess.Screenshot(ctx); err != nil {
		d.log.Warn("capturing screenshot", "error", err)
	} else if err := d.sink.SaveScreenshot(shot); err != nil {
		d.log.Warn("saving screenshot", "error", err)
	}

	if html, err := sess.HTML(ctx); err != nil {
		d.log.Warn("reading page HTML", "error", err)
	} else if err := d.sink.SavePage(html); err != nil {
		d.log.Warn("saving page HTML", "error", err)
	}
}

func countOccurrences(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		n += strings.Count(text, p)
	}
	return n
}
