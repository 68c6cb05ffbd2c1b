package playback

// LocalSource marks an entry whose title field carries a local file path
// instead of a display name. Network playback is disabled, so this is the
// only source kind that actually resolves.
const LocalSource = "LOCAL_TEST"

// Entry is one queued item. Entries are served strictly in FIFO order and
// never reordered.
type Entry struct {
	SourceURL string
	Title     string
}

func (e Entry) IsLocal() bool {
	return e.SourceURL == LocalSource
}
