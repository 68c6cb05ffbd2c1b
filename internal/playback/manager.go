package playback

import (
	"sync"

	"go.uber.org/zap"
)

// Manager keeps at most one session per guild.
type Manager struct {
	mu       sync.Mutex
	logger   *zap.Logger
	sessions map[string]*Session
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Get(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[guildID]
}

// GetOrCreate returns the guild's session, creating one bound to conn and
// notifier if none exists. An existing session keeps its original connection.
func (m *Manager) GetOrCreate(guildID string, conn Connection, notifier Notifier) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[guildID]; ok {
		return s
	}
	s := NewSession(Options{
		GuildID:  guildID,
		Conn:     conn,
		Notifier: notifier,
		Logger:   m.logger,
		OnClose: func() {
			m.remove(guildID)
		},
	})
	m.sessions[guildID] = s
	return s
}

func (m *Manager) remove(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, guildID)
}
