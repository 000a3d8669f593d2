package booking

import "sync"

// bookingLocks serializes mutations per booking id. There is no global lock:
// contention is scoped to a single booking, and analytics reads never touch
// this at all.
type bookingLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBookingLocks() *bookingLocks {
	return &bookingLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *bookingLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
