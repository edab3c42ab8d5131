package session

import (
	"sync"
	"time"
)

// Store состояния диалогов по telegram id пользователя
type Store interface {
	Get(userID int64) State
	Set(userID int64, s State)
	Reset(userID int64)
}

type entry struct {
	state   State
	touched time.Time
}

// MemoryStore состояния в памяти процесса, теряются при перезапуске.
// При ttl > 0 брошенный диалог через ttl читается как Idle.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, items: make(map[int64]entry)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Get(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[userID]
	if !ok {
		return Idle{}
	}
	if m.ttl > 0 && m.now().Sub(e.touched) > m.ttl {
		delete(m.items, userID)
		return Idle{}
	}
	return e.state
}

func (m *MemoryStore) Set(userID int64, s State) {
	if s == nil {
		s = Idle{}
	}
	if _, idle := s.(Idle); idle {
		m.Reset(userID)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[userID] = entry{state: s, touched: m.now()}
}

func (m *MemoryStore) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, userID)
}

// Len число пользователей в незавершённых диалогах
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
