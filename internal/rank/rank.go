package rank

import (
	"sort"
	"strings"

	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/models"
)

// ScoredCandidate is one note scored against a query. It only lives for the
// duration of a single ranking call and is never persisted.
type ScoredCandidate struct {
	Note         *models.Note `json:"note"`
	Score        float64      `json:"score"`
	MatchedTerms []string     `json:"matched_terms"`
	Preview      string       `json:"preview"`
}

// Tokenize splits a query on whitespace, lowercases it, drops tokens of
// length <= 2 and caps the result at the first 10 tokens. The cap bounds
// worst-case cost against degenerate queries.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= constants.MinTokenLength {
			continue
		}
		tokens = append(tokens, f)
		if len(tokens) == constants.MaxQueryTokens {
			break
		}
	}
	return tokens
}

// Rank scores candidates against the query and returns the matches above the
// score floor, best first. A query with no usable tokens returns an empty
// result rather than an error. Candidates must arrive ordered by most
// recently updated first; the sort is stable so that order breaks score ties.
func Rank(query string, candidates []*models.Note, excludeID int, limit int) []ScoredCandidate {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []ScoredCandidate{}
	}

	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	if limit > constants.MaxSearchLimit {
		limit = constants.MaxSearchLimit
	}

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, note := range candidates {
		if excludeID != 0 && note.ID == excludeID {
			continue
		}

		score, matched := ScoreNote(tokens, note)
		if score <= constants.MinMatchScore {
			continue
		}

		scored = append(scored, ScoredCandidate{
			Note:         note,
			Score:        score,
			MatchedTerms: matched,
			Preview:      Preview(note.Content),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored
}

// ScoreNote returns the fraction of query tokens appearing as substrings of
// the note's lowercased title and content, plus the tokens that matched.
func ScoreNote(tokens []string, note *models.Note) (float64, []string) {
	if len(tokens) == 0 {
		return 0, nil
	}

	haystack := strings.ToLower(note.Title + " " + note.Content)
	var matched []string
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			matched = append(matched, token)
		}
	}

	return float64(len(matched)) / float64(len(tokens)), matched
}

// Preview returns the first 150 characters of content with an ellipsis
// marker when truncated.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= constants.PreviewLength {
		return content
	}
	return string(runes[:constants.PreviewLength]) + "..."
}
