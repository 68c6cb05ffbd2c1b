package playback

import (
	"errors"
	"fmt"
	"os"
)

// ErrSourceDisabled is returned for entries that would need network audio.
var ErrSourceDisabled = errors.New("external stream sources are disabled")

// Resource is a playable artifact resolved from an entry.
type Resource struct {
	Path string
	Temp bool // removed best-effort after playback
}

type Resolver interface {
	Resolve(entry Entry) (Resource, error)
}

// FileResolver resolves local test entries to their file on disk. Anything
// else is rejected as a disabled source.
type FileResolver struct{}

func (FileResolver) Resolve(entry Entry) (Resource, error) {
	if !entry.IsLocal() {
		return Resource{}, ErrSourceDisabled
	}
	path := entry.Title
	if _, err := os.Stat(path); err != nil {
		return Resource{}, fmt.Errorf("test file missing: %w", err)
	}
	return Resource{Path: path, Temp: true}, nil
}
