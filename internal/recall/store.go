package recall

import (
	"strconv"
	"strings"
	"sync"

	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/rank"
)

// Store is the injected cache behind a recall session. The cache is purely
// an optimization: a missing or empty store changes latency, never results.
type Store interface {
	Get(key string) ([]rank.ScoredCandidate, bool)
	Set(key string, results []rank.ScoredCandidate)
	Evict()
	Len() int
	Clear()
}

// fifoStore is a bounded map with insertion-order eviction. FIFO rather
// than LRU is intentional; do not upgrade it without a product reason.
type fifoStore struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string][]rank.ScoredCandidate
	order      []string
}

func NewFIFOStore(maxEntries int) Store {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheSize
	}
	return &fifoStore{
		maxEntries: maxEntries,
		entries:    make(map[string][]rank.ScoredCandidate),
	}
}

func (s *fifoStore) Get(key string) ([]rank.ScoredCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results, ok := s.entries[key]
	return results, ok
}

func (s *fifoStore) Set(key string, results []rank.ScoredCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		// Refresh the value without disturbing insertion order
		s.entries[key] = results
		return
	}

	if len(s.order) >= s.maxEntries {
		s.evictLocked()
	}

	s.entries[key] = results
	s.order = append(s.order, key)
}

func (s *fifoStore) Evict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
}

func (s *fifoStore) evictLocked() {
	if len(s.order) == 0 {
		return
	}
	oldest := s.order[0]
	s.order = s.order[1:]
	delete(s.entries, oldest)
}

func (s *fifoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *fifoStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]rank.ScoredCandidate)
	s.order = nil
}

// CacheKey bounds key cardinality to the first 100 characters of the
// lowercased, trimmed query while still separating editing contexts.
func CacheKey(query string, excludeID int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	runes := []rune(normalized)
	if len(runes) > constants.CacheKeyQueryChars {
		normalized = string(runes[:constants.CacheKeyQueryChars])
	}

	context := "none"
	if excludeID != 0 {
		context = strconv.Itoa(excludeID)
	}
	return normalized + "|" + context
}
