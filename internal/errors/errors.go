package errors

import "errors"

// Common errors used throughout the application
var (
	// Database errors
	ErrNoteNotFound = errors.New("note not found")

	// Validation errors
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidNoteID = errors.New("invalid note ID")

	// Embedding errors
	ErrInputTooShort          = errors.New("input too short for embedding")
	ErrDimensionMismatch      = errors.New("embedding dimension mismatch")
	ErrInvalidEmbeddingLength = errors.New("invalid embedding data length")
)
