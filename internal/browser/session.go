// Package browser drives headless Chrome via Rod for a single page
// check: launch, navigate, settle, query, release. A Session is owned by
// exactly one check and is released on every exit path.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the renderer.
type Config struct {
	// UserAgent presented to the target site. Default: a desktop Chrome UA.
	UserAgent string

	// WindowWidth and WindowHeight of the browser window. Default: 1920x1080.
	WindowWidth  int
	WindowHeight int

	// SettleWait is the flat delay after the load event so client-side
	// rendering can finish. Default: 30s.
	SettleWait time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
			" (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if c.WindowWidth == 0 {
		c.WindowWidth = 1920
	}
	if c.WindowHeight == 0 {
		c.WindowHeight = 1080
	}
	if c.SettleWait == 0 {
		c.SettleWait = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Renderer launches a fresh headless Chrome per page render.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a Renderer.
func NewRenderer(cfg Config) *Renderer {
	cfg.defaults()
	return &Renderer{cfg: cfg}
}

// Render launches Chrome, opens a stealth page, navigates to pageURL,
// waits for the load event, then sleeps the settle wait. The returned
// Session must be closed by the caller.
func (r *Renderer) Render(ctx context.Context, pageURL string) (*Session, error) {
	log := r.cfg.Logger

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", r.cfg.WindowWidth, r.cfg.WindowHeight)).
		Set("user-agent", r.cfg.UserAgent)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	sess := &Session{browser: b, lnch: l, log: log}

	page, err := stealth.Page(b)
	if err != nil {
		sess.release()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	sess.page = page

	if err := page.Context(ctx).Navigate(pageURL); err != nil {
		sess.release()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	if err := page.Context(ctx).WaitLoad(); err != nil {
		// Slow pages are still inspectable after the settle wait.
		log.Warn("browser: wait load", "url", pageURL, "error", err)
	}

	log.Info("browser: page loaded, settling", "url", pageURL, "settle_wait", r.cfg.SettleWait)

	select {
	case <-ctx.Done():
		sess.release()
		return nil, ctx.Err()
	case <-time.After(r.cfg.SettleWait):
	}

	return sess, nil
}

// Session is one rendered page plus the Chrome process behind it.
type Session struct {
	page    *rod.Page
	browser *rod.Browser
	lnch    *launcher.Launcher
	log     *slog.Logger
}

// Text returns the visible text content of the rendered document.
func (s *Session) Text(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.innerText`)
	if err != nil {
		return "", fmt.Errorf("browser: read text: %w", err)
	}
	return res.Value.Str(), nil
}

// HTML returns the serialized markup of the rendered document.
func (s *Session) HTML(ctx context.Context) ([]byte, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: read HTML: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Screenshot captures a full-page PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(true, nil)
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot: %w", err)
	}
	return data, nil
}

// ButtonLabels returns the visible labels of button elements, capped at
// limit. Zero buttons is not an error.
func (s *Session) ButtonLabels(ctx context.Context, limit int) ([]string, error) {
	els, err := s.page.Context(ctx).Elements("button")
	if err != nil {
		return nil, fmt.Errorf("browser: query buttons: %w", err)
	}

	labels := make([]string, 0, min(len(els), limit))
	for i, el := range els {
		if i >= limit {
			break
		}
		txt, err := el.Text()
		if err != nil {
			s.log.Debug("browser: read button label", "index", i, "error", err)
			continue
		}
		labels = append(labels, txt)
	}
	return labels, nil
}

// Close releases the page, the browser connection, and the Chrome
// process. Safe to call once per session; the caller logs any error and
// never propagates it.
func (s *Session) Close() error {
	var firstErr error
	if s.page != nil {
		if err := s.page.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("browser: close page: %w", err)
		}
		s.page = nil
	}
	s.release()
	return firstErr
}

func (s *Session) release() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.Debug("browser: close browser", "error", err)
		}
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}
