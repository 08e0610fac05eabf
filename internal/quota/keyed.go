package quota

import "sync"

// keyedMutex hands out one mutex per user id. Entries are reference counted
// and removed once the last holder unlocks, so the map does not grow with the
// user base.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[int64]*entry)}
}

func (k *keyedMutex) lock(key int64) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
