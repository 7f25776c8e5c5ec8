package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notably/recall/internal/config"
	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/embeddings"
	interrors "github.com/notably/recall/internal/errors"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
	"github.com/notably/recall/internal/rank"
)

// Response is what the search surface hands back to callers. FallbackMode
// reports whether the text-overlap heuristic, rather than embedding cosine
// similarity, produced the results.
type Response struct {
	Results      []rank.ScoredCandidate `json:"results"`
	Query        string                 `json:"query"`
	FallbackMode bool                   `json:"fallback_mode"`
}

// Service ranks a user's notes against a free-text query. It prefers stored
// embedding vectors when the query can be embedded and candidates carry
// vectors from the same model, and falls back to the cheap text heuristic
// otherwise.
type Service struct {
	repo     *models.NoteRepository
	pipeline *embeddings.Pipeline
	cfg      *config.Config
}

func NewService(repo *models.NoteRepository, pipeline *embeddings.Pipeline, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

// Search fetches the candidate notes and ranks them. An empty result set is
// a normal outcome, not an error; only a missing query is invalid.
func (s *Service) Search(query string, limit, excludeID int) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", interrors.ErrInvalidInput)
	}

	candidates, err := s.repo.ListByRecency()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	if limit > constants.MaxSearchLimit {
		limit = constants.MaxSearchLimit
	}

	if s.cfg == nil || s.cfg.EnableVectorSearch {
		if results, ok := s.rankByEmbedding(query, candidates, excludeID, limit); ok {
			return &Response{Results: results, Query: query, FallbackMode: false}, nil
		}
	}

	results := rank.Rank(query, candidates, excludeID, limit)
	return &Response{Results: results, Query: query, FallbackMode: true}, nil
}

// rankByEmbedding scores candidates by cosine similarity against the query
// vector. Candidates without a stored vector from the same model are scored
// with the text heuristic so they still compete. Returns ok=false when the
// embedding path is unusable and the caller should fall back entirely.
func (s *Service) rankByEmbedding(query string, candidates []*models.Note, excludeID, limit int) ([]rank.ScoredCandidate, bool) {
	if s.pipeline == nil {
		return nil, false
	}

	stored, err := s.repo.ListEmbeddings()
	if err != nil {
		logger.Error("Failed to load stored embeddings: %v", err)
		return nil, false
	}
	if len(stored) == 0 {
		return nil, false
	}

	queryVec, err := s.pipeline.Generate(query)
	if err != nil {
		// Short or unembeddable queries degrade to the text heuristic
		logger.Debug("Query embedding unavailable: %v", err)
		return nil, false
	}

	tokens := rank.Tokenize(query)

	scored := make([]rank.ScoredCandidate, 0, len(candidates))
	for _, note := range candidates {
		if excludeID != 0 && note.ID == excludeID {
			continue
		}

		score, matched, ok := s.cosineScore(queryVec, stored[note.ID])
		if !ok {
			score, matched = rank.ScoreNote(tokens, note)
		}
		if score <= constants.MinMatchScore {
			continue
		}

		scored = append(scored, rank.ScoredCandidate{
			Note:         note,
			Score:        score,
			MatchedTerms: matched,
			Preview:      rank.Preview(note.Content),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, true
}

func (s *Service) cosineScore(queryVec *embeddings.Vector, stored *models.StoredEmbedding) (float64, []string, bool) {
	if stored == nil || stored.Model != queryVec.Model {
		return 0, nil, false
	}

	values, err := embeddings.FromBytes(stored.Embedding)
	if err != nil {
		logger.Debug("Skipping corrupt embedding for note %d: %v", stored.NoteID, err)
		return 0, nil, false
	}

	noteVec := &embeddings.Vector{Values: values, Model: stored.Model}
	score, err := embeddings.CosineSimilarity(queryVec, noteVec)
	if err != nil {
		logger.Debug("Cannot compare embedding for note %d: %v", stored.NoteID, err)
		return 0, nil, false
	}

	if score < 0 {
		score = 0
	}
	return score, nil, true
}
