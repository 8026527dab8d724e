package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession wraps a fakeDocument with artifact capture and close tracking.
type fakeSession struct {
	fakeDocument

	html          []byte
	htmlErr       error
	screenshot    []byte
	screenshotErr error

	closed   int
	closeErr error
}

func (f *fakeSession) HTML(_ context.Context) ([]byte, error) {
	return f.html, f.htmlErr
}

func (f *fakeSession) Screenshot(_ context.Context) ([]byte, error) {
	return f.screenshot, f.screenshotErr
}

func (f *fakeSession) Close() error {
	f.closed++
	return f.closeErr
}

// recordingSink captures artifact writes.
type recordingSink struct {
	screenshots [][]byte
	pages       [][]byte
	err         error
}

func (s *recordingSink) SaveScreenshot(data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.screenshots = append(s.screenshots, data)
	return nil
}

func (s *recordingSink) SavePage(data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.pages = append(s.pages, data)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticRenderer(sess *fakeSession, err error) Renderer {
	return RendererFunc(func(_ context.Context, _ string) (Session, error) {
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
}

func TestDetect_TextMatch(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{text: "...GET TICKETS..."},
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.True(t, sig.Available)
	assert.Equal(t, "phrase", sig.Rule)
	assert.Equal(t, 1, sess.closed)
}

func TestDetect_ButtonMatch(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{
			text:    "match day is coming",
			buttons: []string{"MENU", "buy Tickets"},
		},
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.True(t, sig.Available)
	assert.Equal(t, "button", sig.Rule)
	assert.Equal(t, 1, sess.closed)
}

func TestDetect_ComingSoonOnly_NotAvailable(t *testing.T) {
	t.Parallel()

	text := ""
	for range 7 {
		text += "COMING SOON "
	}
	sess := &fakeSession{fakeDocument: fakeDocument{text: text}}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	// Placeholder counts are diagnostics only; absence of them never
	// signals availability.
	assert.False(t, sig.Available)
	assert.Equal(t, 7, sig.ComingSoonMatches)
	assert.Zero(t, sig.BuyMatches)
	assert.Equal(t, 1, sess.closed)
}

func TestDetect_RenderFailure_FailsClosed(t *testing.T) {
	t.Parallel()

	d := New(staticRenderer(nil, errors.New("chrome crashed")), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.False(t, sig.Available)
}

func TestDetect_TextReadFailure_FailsClosed(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{textErr: errors.New("context deadline exceeded")},
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.False(t, sig.Available)
	assert.Equal(t, 1, sess.closed, "session must be released on failure paths")
}

func TestDetect_SessionCloseError_Suppressed(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{text: "BUY TICKETS"},
		closeErr:     errors.New("browser already gone"),
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))

	// Must not panic or change the verdict.
	sig := d.Detect(context.Background(), "https://example.com/ticket")
	assert.True(t, sig.Available)
	assert.Equal(t, 1, sess.closed)
}

func TestDetect_SavesArtifacts(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{text: "nothing to see"},
		html:         []byte("<html></html>"),
		screenshot:   []byte{0x89, 'P', 'N', 'G'},
	}
	sink := &recordingSink{}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()), WithArtifactSink(sink))
	d.Detect(context.Background(), "https://example.com/ticket")

	require.Len(t, sink.screenshots, 1)
	require.Len(t, sink.pages, 1)
	assert.Equal(t, sess.screenshot, sink.screenshots[0])
	assert.Equal(t, sess.html, sink.pages[0])
}

func TestDetect_ArtifactFailure_DoesNotAbort(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument:  fakeDocument{text: "BUY TICKETS"},
		htmlErr:       errors.New("eval failed"),
		screenshotErr: errors.New("capture failed"),
	}
	sink := &recordingSink{err: errors.New("disk full")}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()), WithArtifactSink(sink))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.True(t, sig.Available)
}

func TestDetect_DiagnosticCounts(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{
			text: "BUY TICKETS now, or Buy Tickets later. Coming Soon elsewhere.",
		},
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	assert.True(t, sig.Available)
	assert.Equal(t, 2, sig.BuyMatches)
	assert.Equal(t, 1, sig.ComingSoonMatches)
}

func TestDetect_CustomRules(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{fakeDocument: fakeDocument{text: "on sale now"}}

	custom := PhraseRule{Exact: []string{"on sale now"}}
	d := New(
		staticRenderer(sess, nil),
		WithLogger(quietLogger()),
		WithRules([]Rule{custom}),
	)

	sig := d.Detect(context.Background(), "https://example.com/ticket")
	assert.True(t, sig.Available)
	assert.Equal(t, "phrase", sig.Rule)
}

func TestDetect_RuleErrorSkipsToNextRule(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		fakeDocument: fakeDocument{
			text:       "nothing here",
			buttonsErr: errors.New("query failed"),
		},
	}

	d := New(staticRenderer(sess, nil), WithLogger(quietLogger()))
	sig := d.Detect(context.Background(), "https://example.com/ticket")

	// Button query failure degrades to "not available".
	assert.False(t, sig.Available)
}
