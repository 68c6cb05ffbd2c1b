package playback

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Connection is the session's voice transport, satisfied by the platform
// voice connection.
type Connection interface {
	Speaking(flag bool) error
	Disconnect() error
}

// Notifier receives the session's user-facing events. The bot implements it
// by posting to the text channel that issued the play command.
type Notifier interface {
	NowPlaying(title string)
	EntrySkipped(title string, reason string)
	QueueEmpty()
}

// Options configures a session. Resolver, NewPlayer, Notifier and Logger are
// optional and default to the production implementations.
type Options struct {
	GuildID   string
	Conn      Connection
	Resolver  Resolver
	NewPlayer func() Player
	Notifier  Notifier
	Logger    *zap.Logger
	OnClose   func()
}

// Session owns one guild's voice connection, lazily created player and entry
// queue. All transitions run under a single mutex; completion events are
// consumed by one watcher goroutine, so the advance loop never runs
// concurrently with itself.
type Session struct {
	mu        sync.Mutex
	guildID   string
	conn      Connection
	resolver  Resolver
	newPlayer func() Player
	notifier  Notifier
	logger    *zap.Logger
	onClose   func()

	state      State
	queue      []Entry
	current    *Entry
	currentRes Resource
	player     Player
	closed     bool
}

type nopNotifier struct{}

func (nopNotifier) NowPlaying(string)           {}
func (nopNotifier) EntrySkipped(string, string) {}
func (nopNotifier) QueueEmpty()                 {}

func NewSession(opts Options) *Session {
	s := &Session{
		guildID:   opts.GuildID,
		conn:      opts.Conn,
		resolver:  opts.Resolver,
		newPlayer: opts.NewPlayer,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		onClose:   opts.OnClose,
		state:     StateEmpty,
	}
	if s.resolver == nil {
		s.resolver = FileResolver{}
	}
	if s.newPlayer == nil {
		s.newPlayer = func() Player { return NewFilePlayer(FrameDuration) }
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Enqueue appends to the tail and reports the entry's queue position. It
// never starts playback; callers follow up with Start once the voice
// connection is established. A closed session rejects the entry, which can
// happen when an enqueue races the session's own queue-empty teardown;
// callers then obtain a fresh session from the manager.
func (s *Session) Enqueue(entry Entry) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.queue = append(s.queue, entry)
	return len(s.queue), true
}

// Start begins serving the queue if nothing is playing yet.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateEmpty {
		return
	}
	s.advanceLocked()
}

// Skip aborts the current entry; the resulting completion event pops it and
// advances.
func (s *Session) Skip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil || (s.state != StatePlaying && s.state != StatePaused) {
		return false
	}
	s.player.Stop()
	return true
}

func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil || s.state != StatePlaying {
		return false
	}
	s.player.Pause()
	s.state = StatePaused
	return true
}

func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil || s.state != StatePaused {
		return false
	}
	s.player.Resume()
	s.state = StatePlaying
	return true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Queue returns the current entry (if any) followed by the waiting entries.
// The head of the internal queue stays in place while it plays, so it is
// folded into the current entry here.
func (s *Session) Queue() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest := s.queue
	entries := make([]Entry, 0, len(rest)+1)
	if s.current != nil {
		entries = append(entries, *s.current)
		if len(rest) > 0 && rest[0] == *s.current {
			rest = rest[1:]
		}
	}
	return append(entries, rest...)
}

// Close tears the session down without a queue-empty notification. Used by
// the leave command.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.teardownLocked()
}

// advanceLocked serves the head of the queue, skipping entries that fail to
// resolve or play. It iterates instead of re-entering itself; the only other
// caller is the watcher after a completion event, and the two never overlap
// because both run under the session mutex.
func (s *Session) advanceLocked() {
	for {
		if s.closed {
			return
		}
		if len(s.queue) == 0 {
			s.state = StateEmpty
			s.notifier.QueueEmpty()
			s.teardownLocked()
			return
		}

		head := s.queue[0]
		s.state = StateResolving
		res, err := s.resolver.Resolve(head)
		if err != nil {
			s.notifier.EntrySkipped(head.Title, skipReason(err))
			s.logger.Warn("entry skipped", zap.String("guild_id", s.guildID), zap.String("title", head.Title), zap.Error(err))
			s.queue = s.queue[1:]
			continue
		}

		if s.player == nil {
			s.player = s.newPlayer()
			go s.watch(s.player)
		}
		if err := s.player.Play(res); err != nil {
			s.notifier.EntrySkipped(head.Title, skipReason(err))
			s.logger.Warn("play failed", zap.String("guild_id", s.guildID), zap.String("title", head.Title), zap.Error(err))
			s.queue = s.queue[1:]
			continue
		}

		_ = s.conn.Speaking(true)
		s.current = &head
		s.currentRes = res
		s.state = StatePlaying
		s.notifier.NowPlaying(head.Title)
		return
	}
}

func (s *Session) watch(player Player) {
	for err := range player.Events() {
		s.handleTrackDone(err)
	}
}

func (s *Session) handleTrackDone(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.current != nil {
		if err != nil {
			s.notifier.EntrySkipped(s.current.Title, skipReason(err))
			s.logger.Warn("playback error", zap.String("guild_id", s.guildID), zap.String("title", s.current.Title), zap.Error(err))
		}
		if s.currentRes.Temp {
			// Best-effort temp cleanup; a stale file is not worth failing over.
			_ = os.Remove(s.currentRes.Path)
		}
		if len(s.queue) > 0 && s.queue[0] == *s.current {
			s.queue = s.queue[1:]
		}
		s.current = nil
		s.currentRes = Resource{}
	}

	_ = s.conn.Speaking(false)
	s.advanceLocked()
}

func (s *Session) teardownLocked() {
	s.closed = true
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	if s.conn != nil {
		_ = s.conn.Speaking(false)
		if err := s.conn.Disconnect(); err != nil {
			s.logger.Warn("voice disconnect failed", zap.String("guild_id", s.guildID), zap.Error(err))
		}
	}
	s.current = nil
	s.currentRes = Resource{}
	s.queue = nil
	s.state = StateEmpty
	if s.onClose != nil {
		s.onClose()
	}
}

func skipReason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSourceDisabled) {
		return "external sources disabled"
	}
	return err.Error()
}
