package usecase

import "sync"

// CaseLocks serializes all mutations for one caseID while letting different
// cases proceed fully in parallel. Events for one case are applied in the
// order callers acquire the lock; there is no cross-case locking.
type CaseLocks struct {
	mu    sync.Mutex
	locks map[string]*caseLock
}

type caseLock struct {
	mu   sync.Mutex
	refs int
}

// NewCaseLocks creates an empty lock table.
func NewCaseLocks() *CaseLocks {
	return &CaseLocks{locks: make(map[string]*caseLock)}
}

// Lock acquires the per-case mutex and returns the matching unlock func.
func (l *CaseLocks) Lock(caseID string) func() {
	l.mu.Lock()
	cl, ok := l.locks[caseID]
	if !ok {
		cl = &caseLock{}
		l.locks[caseID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()

	return func() {
		cl.mu.Unlock()

		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.locks, caseID)
		}
		l.mu.Unlock()
	}
}
