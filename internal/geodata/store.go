package geodata

import "sync"

// Store owns the current feature collection for the page session. The
// collection is replaced wholesale on each successful load and is never
// mutated in place, so readers can hold a *Collection without locking.
type Store struct {
	mu   sync.RWMutex
	coll *Collection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a new collection generation.
func (s *Store) Replace(c *Collection) {
	s.mu.Lock()
	s.coll = c
	s.mu.Unlock()
}

// Current returns the loaded collection, or false when nothing has been
// loaded yet.
func (s *Store) Current() (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll, s.coll != nil
}

// Count returns the number of loaded features, zero when unloaded.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coll.Count()
}

// Generation returns the current generation ID, empty when unloaded.
func (s *Store) Generation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coll == nil {
		return ""
	}
	return s.coll.Generation
}
