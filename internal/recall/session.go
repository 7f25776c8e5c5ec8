package recall

import (
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/rank"
)

// State of an edit session's recall loop.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateFetching
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateDebouncing:
		return "debouncing"
	case StateFetching:
		return "fetching"
	case StateDisplaying:
		return "displaying"
	default:
		return "idle"
	}
}

// Fetcher retrieves ranked similar notes for a query. Usually backed by the
// search service over the network.
type Fetcher func(query string, limit int, excludeID int) ([]rank.ScoredCandidate, error)

// DisplayFunc receives results once a fetch or cache hit completes. A nil
// slice clears the display.
type DisplayFunc func(results []rank.ScoredCandidate)

// Session debounces and memoizes similar-note lookups while the user types.
// One debounce timer is live per session; each keystroke replaces it.
type Session struct {
	mu sync.Mutex

	store     Store
	fetch     Fetcher
	display   DisplayFunc
	debounced func(func())

	minQueryLength int

	state          State
	excludeID      int
	lastDispatched string

	// Monotonic request token; a response is only applied when its token is
	// still the latest issued, so a slow older fetch can never overwrite a
	// newer one.
	seq    uint64
	latest uint64
}

type SessionOption func(*Session)

func WithStore(store Store) SessionOption {
	return func(s *Session) { s.store = store }
}

func WithDebounceInterval(interval time.Duration) SessionOption {
	return func(s *Session) { s.debounced = debounce.New(interval) }
}

func WithMinQueryLength(n int) SessionOption {
	return func(s *Session) { s.minQueryLength = n }
}

func NewSession(fetch Fetcher, display DisplayFunc, opts ...SessionOption) *Session {
	s := &Session{
		fetch:          fetch,
		display:        display,
		minQueryLength: constants.MinRecallQueryLength,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewFIFOStore(constants.DefaultCacheSize)
	}
	if s.debounced == nil {
		s.debounced = debounce.New(constants.DefaultDebounceMillis * time.Millisecond)
	}
	return s
}

// FindSimilar is the sole entry point for the editor. Each call counts as a
// keystroke: it resets the debounce timer, gates on minimum length, serves
// cache hits immediately and otherwise schedules a fetch.
func (s *Session) FindSimilar(content string, limit int, excludeID int) {
	query := strings.TrimSpace(content)

	s.mu.Lock()

	// Switching the note being edited invalidates every cached result;
	// stale cross-context matches must never leak.
	if excludeID != s.excludeID {
		s.store.Clear()
		s.excludeID = excludeID
		s.lastDispatched = ""
	}

	if len([]rune(query)) < s.minQueryLength {
		s.state = StateIdle
		s.mu.Unlock()
		if s.display != nil {
			s.display(nil)
		}
		return
	}

	key := CacheKey(query, excludeID)
	if results, ok := s.store.Get(key); ok {
		s.state = StateDisplaying
		s.mu.Unlock()
		if s.display != nil {
			s.display(results)
		}
		return
	}

	// Unchanged input during the debounce window would duplicate the
	// in-flight request; suppress it.
	if query == s.lastDispatched {
		s.mu.Unlock()
		return
	}

	s.state = StateDebouncing
	s.mu.Unlock()

	s.debounced(func() {
		s.dispatch(query, limit, excludeID, key)
	})
}

func (s *Session) dispatch(query string, limit, excludeID int, key string) {
	s.mu.Lock()
	s.lastDispatched = query
	s.seq++
	token := s.seq
	s.latest = token
	s.state = StateFetching
	s.mu.Unlock()

	results, err := s.fetch(query, limit, excludeID)

	s.mu.Lock()
	if token != s.latest {
		// A newer request was issued while this one was in flight
		s.mu.Unlock()
		logger.Debug("Discarding stale recall response (token %d)", token)
		return
	}

	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		logger.Error("Recall fetch failed: %v", err)
		return
	}

	s.store.Set(key, results)
	s.state = StateDisplaying
	s.mu.Unlock()

	if s.display != nil {
		s.display(results)
	}
}

// State reports the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
