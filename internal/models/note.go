package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	interrors "github.com/notably/recall/internal/errors"
)

type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredEmbedding is a note's persisted vector plus the model that made it.
type StoredEmbedding struct {
	NoteID     int
	Embedding  []byte
	Model      string
	TokenCount int
}

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(title, content string) (*Note, error) {
	result, err := r.db.Exec(
		"INSERT INTO notes (title, content) VALUES (?, ?)",
		title, content,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert id: %w", err)
	}

	return r.GetByID(int(id))
}

func (r *NoteRepository) GetByID(id int) (*Note, error) {
	var note Note
	err := r.db.QueryRow(
		"SELECT id, title, content, summary, created_at, updated_at FROM notes WHERE id = ?",
		id,
	).Scan(&note.ID, &note.Title, &note.Content, &note.Summary, &note.CreatedAt, &note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return &note, nil
}

func (r *NoteRepository) List(limit, offset int) ([]*Note, error) {
	query := "SELECT id, title, content, summary, created_at, updated_at FROM notes ORDER BY created_at DESC"
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListByRecency returns all notes ordered by most recently updated first.
// Ranking relies on this order for score ties.
func (r *NoteRepository) ListByRecency() ([]*Note, error) {
	rows, err := r.db.Query(
		"SELECT id, title, content, summary, created_at, updated_at FROM notes ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

func (r *NoteRepository) UpdateByID(id int, title, content string) (*Note, error) {
	_, err := r.db.Exec(
		"UPDATE notes SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		title, content, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return r.GetByID(id)
}

func (r *NoteRepository) UpdateSummary(id int, summary string) error {
	result, err := r.db.Exec(
		"UPDATE notes SET summary = ? WHERE id = ?",
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return interrors.ErrNoteNotFound
	}

	return nil
}

func (r *NoteRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return interrors.ErrNoteNotFound
	}

	// Embedding row goes with the note
	_, _ = r.db.Exec("DELETE FROM note_embeddings WHERE note_id = ?", id)

	return nil
}

func (r *NoteRepository) Search(query string) ([]*Note, error) {
	searchQuery := "%" + query + "%"
	rows, err := r.db.Query(
		"SELECT id, title, content, summary, created_at, updated_at FROM notes WHERE title LIKE ? OR content LIKE ? ORDER BY updated_at DESC",
		searchQuery, searchQuery,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

func (r *NoteRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// SaveEmbedding stores or replaces the vector for a note. Last write wins;
// embeddings are regenerated whenever content changes meaningfully.
func (r *NoteRepository) SaveEmbedding(noteID int, embedding []byte, model string, tokenCount int) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO note_embeddings (note_id, embedding, model, token_count, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		noteID, embedding, model, tokenCount,
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetEmbedding(noteID int) (*StoredEmbedding, error) {
	var stored StoredEmbedding
	err := r.db.QueryRow(
		"SELECT note_id, embedding, model, token_count FROM note_embeddings WHERE note_id = ?",
		noteID,
	).Scan(&stored.NoteID, &stored.Embedding, &stored.Model, &stored.TokenCount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}

	return &stored, nil
}

// ListEmbeddings returns all stored vectors keyed by note ID.
func (r *NoteRepository) ListEmbeddings() (map[int]*StoredEmbedding, error) {
	rows, err := r.db.Query("SELECT note_id, embedding, model, token_count FROM note_embeddings")
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	embeddings := make(map[int]*StoredEmbedding)
	for rows.Next() {
		var stored StoredEmbedding
		if err := rows.Scan(&stored.NoteID, &stored.Embedding, &stored.Model, &stored.TokenCount); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		embeddings[stored.NoteID] = &stored
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return embeddings, nil
}

func scanNotes(rows *sql.Rows) ([]*Note, error) {
	var notes []*Note
	for rows.Next() {
		var note Note
		err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.Summary, &note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}
