package scan

import (
	"sync"
)

// Store keeps finished scan results for lookup by scan id. Implementations
// must be safe for concurrent insert and lookup across scans.
type Store interface {
	// Save stores a finished result under its scan id.
	Save(result *Result)

	// Find returns the stored result for a scan id.
	Find(scanID string) (*Result, bool)
}

// memoryStore is the process-lifetime result store. Results are retained
// until the process exits: there is no eviction or expiry, which is an
// explicit design choice for a single-process scanner, not an oversight.
type memoryStore struct {
	mu      sync.RWMutex
	results map[string]*Result
}

// NewMemoryStore creates an empty in-memory result store.
func NewMemoryStore() Store {
	return &memoryStore{
		results: make(map[string]*Result),
	}
}

func (s *memoryStore) Save(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ScanID] = result
}

func (s *memoryStore) Find(scanID string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[scanID]
	return result, ok
}
