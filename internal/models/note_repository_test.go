package models

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	interrors "github.com/notably/recall/internal/errors"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create notes table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS note_embeddings (
			note_id INTEGER PRIMARY KEY,
			embedding BLOB NOT NULL,
			model TEXT NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create embeddings table: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func TestNoteRepositoryCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, err := repo.Create("Test Note", "Test content")
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	if note.ID == 0 {
		t.Error("Note should have a valid ID")
	}
	if note.Title != "Test Note" {
		t.Errorf("Expected title Test Note, got %s", note.Title)
	}
	if note.Content != "Test content" {
		t.Errorf("Expected content Test content, got %s", note.Content)
	}
	if note.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if note.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestNoteRepositoryGetByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	created, err := repo.Create("Test Title", "Test Content")
	if err != nil {
		t.Fatalf("Failed to create note: %v", err)
	}

	retrieved, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}

	if retrieved.ID != created.ID {
		t.Errorf("ID mismatch: expected %d, got %d", created.ID, retrieved.ID)
	}
	if retrieved.Title != created.Title {
		t.Errorf("Title mismatch: expected %s, got %s", created.Title, retrieved.Title)
	}
}

func TestNoteRepositoryGetByIDNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	_, err := repo.GetByID(9999)
	if !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositoryListByRecency(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	first, _ := repo.Create("First", "content one")
	second, _ := repo.Create("Second", "content two")
	third, _ := repo.Create("Third", "content three")

	// Make update times distinct; CURRENT_TIMESTAMP only has second resolution
	for i, id := range []int{second.ID, third.ID, first.ID} {
		offset := fmt.Sprintf("-%d hours", 3-i)
		_, err := db.Exec("UPDATE notes SET updated_at = datetime('now', ?) WHERE id = ?", offset, id)
		if err != nil {
			t.Fatalf("Failed to set updated_at: %v", err)
		}
	}

	notes, err := repo.ListByRecency()
	if err != nil {
		t.Fatalf("Failed to list notes: %v", err)
	}

	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(notes))
	}
	// first was touched most recently, then third, then second
	if notes[0].ID != first.ID || notes[1].ID != third.ID || notes[2].ID != second.ID {
		t.Errorf("Expected recency order [%d %d %d], got [%d %d %d]",
			first.ID, third.ID, second.ID, notes[0].ID, notes[1].ID, notes[2].ID)
	}
}

func TestNoteRepositoryUpdateSummary(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, _ := repo.Create("Title", "Content")
	if err := repo.UpdateSummary(note.ID, "a short summary"); err != nil {
		t.Fatalf("Failed to update summary: %v", err)
	}

	retrieved, _ := repo.GetByID(note.ID)
	if retrieved.Summary != "a short summary" {
		t.Errorf("Expected summary stored, got %q", retrieved.Summary)
	}

	if err := repo.UpdateSummary(9999, "x"); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteRepositoryDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, _ := repo.Create("Title", "Content")
	if err := repo.SaveEmbedding(note.ID, []byte{0, 0, 128, 63}, "test-model", 3); err != nil {
		t.Fatalf("Failed to save embedding: %v", err)
	}

	if err := repo.Delete(note.ID); err != nil {
		t.Fatalf("Failed to delete note: %v", err)
	}

	if _, err := repo.GetByID(note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound after delete, got %v", err)
	}

	stored, err := repo.GetEmbedding(note.ID)
	if err != nil {
		t.Fatalf("Failed to query embedding: %v", err)
	}
	if stored != nil {
		t.Error("Expected embedding removed with the note")
	}

	if err := repo.Delete(note.ID); !errors.Is(err, interrors.ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on second delete, got %v", err)
	}
}

func TestNoteRepositoryEmbeddings(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	note, _ := repo.Create("Title", "Content")

	blob := []byte{0, 0, 128, 63, 0, 0, 0, 64} // [1.0, 2.0]
	if err := repo.SaveEmbedding(note.ID, blob, "test-model", 12); err != nil {
		t.Fatalf("Failed to save embedding: %v", err)
	}

	stored, err := repo.GetEmbedding(note.ID)
	if err != nil {
		t.Fatalf("Failed to get embedding: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected stored embedding")
	}
	if stored.Model != "test-model" || stored.TokenCount != 12 {
		t.Errorf("Unexpected stored metadata: %+v", stored)
	}

	// Replacing is a single last-write-wins update
	if err := repo.SaveEmbedding(note.ID, blob, "other-model", 5); err != nil {
		t.Fatalf("Failed to replace embedding: %v", err)
	}
	stored, _ = repo.GetEmbedding(note.ID)
	if stored.Model != "other-model" {
		t.Errorf("Expected replaced model, got %s", stored.Model)
	}

	all, err := repo.ListEmbeddings()
	if err != nil {
		t.Fatalf("Failed to list embeddings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 stored embedding, got %d", len(all))
	}
}

func TestNoteRepositorySearch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNoteRepository(db)

	_, _ = repo.Create("Project plan", "deadline friday")
	_, _ = repo.Create("Groceries", "milk eggs")

	notes, err := repo.Search("deadline")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "Project plan" {
		t.Errorf("Expected the project note, got %+v", notes)
	}
}
