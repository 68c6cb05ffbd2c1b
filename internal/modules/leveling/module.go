package leveling

import "sync"

type entry struct {
	xp    int
	level int
}

// Snapshot is the state of a user's ledger entry after an operation.
type Snapshot struct {
	XP        int
	Level     int
	LeveledUp bool
}

// Ledger tracks cumulative XP per user. Advancing from level L to L+1
// requires (L+1)*step cumulative XP. A single grant advances at most one
// level even when the amount crosses several thresholds at once. Entries
// live for the process lifetime.
type Ledger struct {
	mu      sync.Mutex
	step    int
	entries map[string]*entry
}

func New(step int) *Ledger {
	return &Ledger{
		step:    step,
		entries: make(map[string]*entry),
	}
}

func (l *Ledger) Grant(userID string, amount int) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.entries[userID]
	if item == nil {
		item = &entry{}
		l.entries[userID] = item
	}

	item.xp += amount
	leveledUp := false
	needed := (item.level + 1) * l.step
	if item.xp >= needed {
		item.level++
		leveledUp = true
	}

	return Snapshot{XP: item.xp, Level: item.level, LeveledUp: leveledUp}
}

func (l *Ledger) Snapshot(userID string) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.entries[userID]
	if item == nil {
		return Snapshot{}
	}
	return Snapshot{XP: item.xp, Level: item.level}
}
