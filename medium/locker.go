package medium

import (
	"sync"
)

// pathLocker hands out exclusive, non-blocking locks keyed by target path.
type pathLocker struct {
	inUse map[string]int
	mtx   sync.Mutex
}

func newPathLocker() *pathLocker {
	return &pathLocker{
		inUse: make(map[string]int),
	}
}

func (l *pathLocker) TryLock(key string) bool {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.inUse[key] > 0 {
		return false
	}
	l.inUse[key]++
	return true
}

func (l *pathLocker) Unlock(key string) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.inUse[key] != 1 {
		panic("unlocking unlocked path locker")
	}
	delete(l.inUse, key)
}
