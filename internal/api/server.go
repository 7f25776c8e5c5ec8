package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/notably/recall/internal/config"
	interrors "github.com/notably/recall/internal/errors"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
	"github.com/notably/recall/internal/search"
	"github.com/notably/recall/internal/summarize"
	"github.com/rs/cors"
)

type APIServer struct {
	cfg        *config.Config
	repo       *models.NoteRepository
	searchSvc  *search.Service
	indexer    *search.Indexer
	summarizer *summarize.Summarizer
	server     *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type SimilarRequest struct {
	Query         string `json:"query"`
	Limit         int    `json:"limit"`
	ExcludeNoteID int    `json:"exclude_note_id"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

func NewAPIServer(cfg *config.Config, repo *models.NoteRepository, searchSvc *search.Service, indexer *search.Indexer) *APIServer {
	return &APIServer{
		cfg:        cfg,
		repo:       repo,
		searchSvc:  searchSvc,
		indexer:    indexer,
		summarizer: summarize.NewSummarizer(cfg),
	}
}

func (s *APIServer) Start(host string, port int) error {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	// Notes endpoints
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes", s.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/similar", s.handleSimilarNotes).Methods("POST")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleGetNote).Methods("GET")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleUpdateNote).Methods("PUT")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleDeleteNote).Methods("DELETE")
	api.HandleFunc("/notes/{id:[0-9]+}/summarize", s.handleSummarizeNote).Methods("POST")

	// Statistics and info endpoints
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this more restrictively in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})

	handler := c.Handler(router)

	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *APIServer) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode < 400,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   err.Error(),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) parseIntParam(r *http.Request, param string) (int, error) {
	vars := mux.Vars(r)
	str, exists := vars[param]
	if !exists {
		return 0, fmt.Errorf("missing parameter: %s", param)
	}
	return strconv.Atoi(str)
}

func (s *APIServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	notes, err := s.repo.List(limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, notes)
}

func (s *APIServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, interrors.ErrEmptyTitle)
		return
	}
	if req.Content == "" {
		s.writeError(w, http.StatusBadRequest, interrors.ErrEmptyContent)
		return
	}

	note, err := s.repo.Create(req.Title, req.Content)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Embedding failures never fail the write
	if s.indexer != nil {
		if err := s.indexer.IndexNote(note); err != nil {
			logger.Error("Failed to index note %d: %v", note.ID, err)
		}
	}

	s.writeJSON(w, http.StatusCreated, note)
}

func (s *APIServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	note, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, interrors.ErrNoteNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, note)
}

func (s *APIServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	existing, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, interrors.ErrNoteNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	title := existing.Title
	content := existing.Content
	if req.Title != "" {
		title = req.Title
	}
	if req.Content != "" {
		content = req.Content
	}

	note, err := s.repo.UpdateByID(id, title, content)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.indexer != nil {
		if err := s.indexer.IndexNote(note); err != nil {
			logger.Error("Failed to reindex note %d: %v", note.ID, err)
		}
	}

	s.writeJSON(w, http.StatusOK, note)
}

func (s *APIServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, interrors.ErrNoteNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

func (s *APIServer) handleSimilarNotes(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	response, err := s.searchSvc.Search(req.Query, req.Limit, req.ExcludeNoteID)
	if err != nil {
		if errors.Is(err, interrors.ErrInvalidInput) {
			s.writeError(w, http.StatusBadRequest, err)
		} else {
			// Internal details stay out of the client-facing message
			logger.Error("Similar search failed: %v", err)
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("search failed"))
		}
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *APIServer) handleSummarizeNote(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	note, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, interrors.ErrNoteNotFound) {
			s.writeError(w, http.StatusNotFound, err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	result, err := s.summarizer.SummarizeNote(note)
	if err != nil {
		logger.Error("Failed to summarize note %d: %v", id, err)
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("summarization failed"))
		return
	}

	if err := s.repo.UpdateSummary(id, result.Summary); err != nil {
		logger.Error("Failed to store summary for note %d: %v", id, err)
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.Count()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	embedded, err := s.repo.ListEmbeddings()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notes":           count,
		"embedded_notes":  len(embedded),
		"embedding_model": s.cfg.EmbeddingModel,
	})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "recall",
	})
}
