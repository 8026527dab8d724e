package detect

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactSink receives the debug artifacts captured during a check.
// Writes are best-effort: the detector logs failures and carries on.
type ArtifactSink interface {
	SaveScreenshot(data []byte) error
	SavePage(data []byte) error
}

// Discard drops all artifacts. Used in tests and when artifact output
// is not wanted.
type Discard struct{}

// SaveScreenshot implements ArtifactSink.
func (Discard) SaveScreenshot([]byte) error { return nil }

// SavePage implements ArtifactSink.
func (Discard) SavePage([]byte) error { return nil }

// DirSink writes artifacts to fixed filenames in a directory,
// overwriting them on every run.
type DirSink struct {
	dir        string
	screenshot string
	page       string
}

// NewDirSink creates a DirSink writing screenshot and page files under dir.
func NewDirSink(dir, screenshot, page string) *DirSink {
	return &DirSink{dir: dir, screenshot: screenshot, page: page}
}

// SaveScreenshot implements ArtifactSink.
func (s *DirSink) SaveScreenshot(data []byte) error {
	return s.write(s.screenshot, data)
}

// SavePage implements ArtifactSink.
func (s *DirSink) SavePage(data []byte) error {
	return s.write(s.page, data)
}

func (s *DirSink) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil { //nolint:gosec // debug artifact
		return fmt.Errorf("writing artifact %s: %w", name, err)
	}
	return nil
}
