package interaction

import "sync"

// messageLocks serializes read-decode-update cycles per message so two
// near-simultaneous clicks on the same message cannot interleave their
// updates within this process. Across processes the platform remains
// last-write-wins.
type messageLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMessageLocks() *messageLocks {
	return &messageLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *messageLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
