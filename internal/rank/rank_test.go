package rank

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/notably/recall/internal/models"
)

func makeNote(id int, title, content string, updatedAt time.Time) *models.Note {
	return &models.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"lowercases and splits", "Project DEADLINE Meeting", []string{"project", "deadline", "meeting"}},
		{"drops short tokens", "go to my big office", []string{"big", "office"}},
		{"empty query", "", nil},
		{"only short tokens", "a an to of it", nil},
		{"unicode tokens survive", "日本語のメモ 検索", []string{"日本語のメモ", "検索"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.query)
			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok != tt.expected[i] {
					t.Errorf("Token %d: expected %q, got %q", i, tt.expected[i], tok)
				}
			}
		})
	}
}

func TestTokenizeCapsAtTenTokens(t *testing.T) {
	var words []string
	for i := 0; i < 15; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}

	tokens := Tokenize(strings.Join(words, " "))
	if len(tokens) != 10 {
		t.Errorf("Expected 10 tokens, got %d", len(tokens))
	}
	if tokens[9] != "word09" {
		t.Errorf("Expected cap to keep the first tokens, got %v", tokens)
	}
}

func TestRankEmptyTokensReturnsEmpty(t *testing.T) {
	notes := []*models.Note{
		makeNote(1, "Anything", "at all", time.Now()),
	}

	for _, query := range []string{"", "a to of", "   "} {
		results := Rank(query, notes, 0, 5)
		if len(results) != 0 {
			t.Errorf("Query %q: expected empty results, got %d", query, len(results))
		}
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	results := Rank("project deadline", nil, 0, 5)
	if len(results) != 0 {
		t.Errorf("Expected empty results for empty candidate set, got %d", len(results))
	}
}

func TestRankScenarioProjectDeadlineMeeting(t *testing.T) {
	now := time.Now()
	notes := []*models.Note{
		makeNote(1, "Q3 Project Plan", "deadline is friday", now),
		makeNote(2, "Groceries", "milk eggs", now),
	}

	results := Rank("project deadline meeting", notes, 0, 5)

	if len(results) != 1 {
		t.Fatalf("Expected exactly 1 result, got %d", len(results))
	}
	if results[0].Note.ID != 1 {
		t.Errorf("Expected note 1, got %d", results[0].Note.ID)
	}
	// 2 of 3 tokens matched
	if results[0].Score < 0.66 {
		t.Errorf("Expected score >= 0.66, got %f", results[0].Score)
	}
	if len(results[0].MatchedTerms) != 2 {
		t.Errorf("Expected 2 matched terms, got %v", results[0].MatchedTerms)
	}
}

func TestRankScoresWithinRange(t *testing.T) {
	now := time.Now()
	notes := []*models.Note{
		makeNote(1, "alpha beta gamma", "delta epsilon", now),
		makeNote(2, "alpha", "", now),
		makeNote(3, "unrelated", "nothing here", now),
	}

	results := Rank("alpha beta gamma delta epsilon zeta eta theta iota kappa", notes, 0, 20)
	for _, r := range results {
		if r.Score <= 0.1 || r.Score > 1.0 {
			t.Errorf("Score %f for note %d outside (0.1, 1.0]", r.Score, r.Note.ID)
		}
	}
}

func TestRankDiscardsBelowFloor(t *testing.T) {
	now := time.Now()
	// 1 of 10 tokens matches: score 0.1, at the floor, discarded
	notes := []*models.Note{
		makeNote(1, "word00", "", now),
	}

	var words []string
	for i := 0; i < 10; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}

	results := Rank(strings.Join(words, " "), notes, 0, 5)
	if len(results) != 0 {
		t.Errorf("Expected score at the 0.1 floor to be discarded, got %d results", len(results))
	}
}

func TestRankSortsByScoreThenRecency(t *testing.T) {
	now := time.Now()
	// Candidates arrive most-recently-updated first
	notes := []*models.Note{
		makeNote(1, "project", "", now),                          // 1/2 tokens, newest
		makeNote(2, "project deadline", "", now.Add(-time.Hour)), // 2/2 tokens
		makeNote(3, "project", "", now.Add(-2*time.Hour)),        // 1/2 tokens, oldest
	}

	results := Rank("project deadline", notes, 0, 5)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Note.ID != 2 {
		t.Errorf("Expected highest-scoring note first, got %d", results[0].Note.ID)
	}
	// Equal scores keep recency order
	if results[1].Note.ID != 1 || results[2].Note.ID != 3 {
		t.Errorf("Expected recency tiebreak order [1 3], got [%d %d]", results[1].Note.ID, results[2].Note.ID)
	}
}

func TestRankExcludesNote(t *testing.T) {
	now := time.Now()
	notes := []*models.Note{
		makeNote(1, "project deadline", "", now),
		makeNote(2, "project deadline", "", now),
	}

	results := Rank("project deadline", notes, 1, 5)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Note.ID != 2 {
		t.Errorf("Expected excluded note to be filtered, got note %d", results[0].Note.ID)
	}
}

func TestRankLimit(t *testing.T) {
	now := time.Now()
	var notes []*models.Note
	for i := 1; i <= 30; i++ {
		notes = append(notes, makeNote(i, "project deadline", "", now))
	}

	if got := len(Rank("project deadline", notes, 0, 3)); got != 3 {
		t.Errorf("Expected 3 results, got %d", got)
	}
	// Engine-side hard cap
	if got := len(Rank("project deadline", notes, 0, 100)); got != 20 {
		t.Errorf("Expected hard cap of 20 results, got %d", got)
	}
	// Default limit
	if got := len(Rank("project deadline", notes, 0, 0)); got != 5 {
		t.Errorf("Expected default of 5 results, got %d", got)
	}
}

func TestPreview(t *testing.T) {
	short := "short content"
	if Preview(short) != short {
		t.Errorf("Short content should not be truncated")
	}

	long := strings.Repeat("x", 200)
	preview := Preview(long)
	if len([]rune(preview)) != 153 {
		t.Errorf("Expected 150 characters plus ellipsis, got %d", len([]rune(preview)))
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Expected ellipsis marker on truncated preview")
	}
}
