package recall

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/notably/recall/internal/models"
	"github.com/notably/recall/internal/rank"
)

const testDebounce = 10 * time.Millisecond

func settle() {
	time.Sleep(5 * testDebounce)
}

type displayRecorder struct {
	mu    sync.Mutex
	calls [][]rank.ScoredCandidate
}

func (d *displayRecorder) record(results []rank.ScoredCandidate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, results)
}

func (d *displayRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *displayRecorder) last() []rank.ScoredCandidate {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return nil
	}
	return d.calls[len(d.calls)-1]
}

func resultsFor(id int) []rank.ScoredCandidate {
	return []rank.ScoredCandidate{
		{Note: &models.Note{ID: id, Title: "note"}, Score: 0.5},
	}
}

func TestSessionDebouncesIdenticalQueries(t *testing.T) {
	var fetches int32
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		atomic.AddInt32(&fetches, 1)
		return resultsFor(1), nil
	}

	display := &displayRecorder{}
	session := NewSession(fetch, display.record, WithDebounceInterval(testDebounce))

	session.FindSimilar("project deadline", 5, 0)
	session.FindSimilar("project deadline", 5, 0)
	settle()

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Expected exactly one underlying fetch, got %d", got)
	}
}

func TestSessionCacheHitSkipsFetch(t *testing.T) {
	var fetches int32
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		atomic.AddInt32(&fetches, 1)
		return resultsFor(1), nil
	}

	display := &displayRecorder{}
	session := NewSession(fetch, display.record, WithDebounceInterval(testDebounce))

	session.FindSimilar("project deadline", 5, 0)
	settle()

	// Same query again: served from cache, no new fetch, display still fires
	before := display.count()
	session.FindSimilar("project deadline", 5, 0)
	settle()

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Expected cache hit to skip fetch, got %d fetches", got)
	}
	if display.count() != before+1 {
		t.Errorf("Expected cache hit to display results")
	}
	if session.State() != StateDisplaying {
		t.Errorf("Expected displaying state, got %s", session.State())
	}
}

func TestSessionMinimumLengthGate(t *testing.T) {
	var fetches int32
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		atomic.AddInt32(&fetches, 1)
		return resultsFor(1), nil
	}

	display := &displayRecorder{}
	session := NewSession(fetch, display.record, WithDebounceInterval(testDebounce))

	session.FindSimilar("abc", 5, 0)
	settle()

	if got := atomic.LoadInt32(&fetches); got != 0 {
		t.Errorf("Expected no fetch for short input, got %d", got)
	}
	if session.State() != StateIdle {
		t.Errorf("Expected idle state, got %s", session.State())
	}
	if display.count() != 1 || display.last() != nil {
		t.Errorf("Expected a single nil display to clear results")
	}
}

func TestSessionClearsCacheOnExcludeChange(t *testing.T) {
	store := NewFIFOStore(50)
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		return resultsFor(1), nil
	}

	session := NewSession(fetch, nil, WithDebounceInterval(testDebounce), WithStore(store))

	session.FindSimilar("project deadline", 5, 7)
	settle()
	if store.Len() != 1 {
		t.Fatalf("Expected one cached entry, got %d", store.Len())
	}

	// Switching the edited note must drop every prior entry
	session.FindSimilar("something different", 5, 8)
	settle()

	if _, ok := store.Get(CacheKey("project deadline", 7)); ok {
		t.Error("Expected stale context entry to be cleared")
	}
}

func TestSessionDiscardsStaleResponses(t *testing.T) {
	blockFirst := make(chan struct{})
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		if query == "first slow query" {
			<-blockFirst
			return resultsFor(1), nil
		}
		return resultsFor(2), nil
	}

	display := &displayRecorder{}
	session := NewSession(fetch, display.record, WithDebounceInterval(testDebounce))

	// First query dispatches and blocks in flight
	session.FindSimilar("first slow query", 5, 0)
	settle()

	// Second query dispatches and completes while the first is stuck
	session.FindSimilar("second fast query", 5, 0)
	settle()

	// Releasing the stale first response must not overwrite the newer one
	close(blockFirst)
	settle()

	if display.count() != 1 {
		t.Fatalf("Expected exactly one display call, got %d", display.count())
	}
	last := display.last()
	if len(last) != 1 || last[0].Note.ID != 2 {
		t.Errorf("Expected newest response to win, got %+v", last)
	}
}
