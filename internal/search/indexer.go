package search

import (
	"fmt"

	"github.com/notably/recall/internal/embeddings"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
)

// Indexer generates and stores embeddings after note writes. Failures are
// reported to the caller but must never roll back the triggering write; the
// note simply lacks a vector until a future retry.
type Indexer struct {
	repo     *models.NoteRepository
	pipeline *embeddings.Pipeline
}

func NewIndexer(repo *models.NoteRepository, pipeline *embeddings.Pipeline) *Indexer {
	return &Indexer{repo: repo, pipeline: pipeline}
}

// IndexNote embeds a note's content and persists the vector. Content that
// fails the worth-embedding gate is skipped silently.
func (ix *Indexer) IndexNote(note *models.Note) error {
	text := note.Title + " " + note.Content

	if !embeddings.ShouldEmbed(text) {
		logger.Debug("Note %d skipped: content not worth an embedding call", note.ID)
		return nil
	}

	prepared := embeddings.PrepareContent(text)
	vec, err := ix.pipeline.Generate(prepared)
	if err != nil {
		return fmt.Errorf("failed to embed note %d: %w", note.ID, err)
	}

	if err := ix.repo.SaveEmbedding(note.ID, embeddings.ToBytes(vec.Values), vec.Model, vec.TokenCount); err != nil {
		return fmt.Errorf("failed to store embedding for note %d: %w", note.ID, err)
	}

	logger.Debug("Indexed note %d (%d dimensions, ~%d tokens)", note.ID, vec.Dimensions(), vec.TokenCount)
	return nil
}

// ReindexAll regenerates embeddings for every note. Per-note failures are
// logged and counted, not fatal.
func (ix *Indexer) ReindexAll() (indexed, skipped, failed int, err error) {
	notes, err := ix.repo.ListByRecency()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	for _, note := range notes {
		if !embeddings.ShouldEmbed(note.Title + " " + note.Content) {
			skipped++
			continue
		}
		if err := ix.IndexNote(note); err != nil {
			logger.Error("Reindex: %v", err)
			failed++
			continue
		}
		indexed++
	}

	return indexed, skipped, failed, nil
}
