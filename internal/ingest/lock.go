package ingest

import "sync"

// pathLocks provides non-blocking per-document locks so two concurrent runs
// never process the same relative path at once.
type pathLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newPathLocks() *pathLocks {
	return &pathLocks{held: make(map[string]struct{})}
}

// TryLock acquires the lock for a path without blocking. Returns false when
// the path is already locked.
func (l *pathLocks) TryLock(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[path]; ok {
		return false
	}
	l.held[path] = struct{}{}
	return true
}

// Unlock releases the lock for a path.
func (l *pathLocks) Unlock(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, path)
}
