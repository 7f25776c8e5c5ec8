package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/notably/recall/internal/config"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
	"github.com/notably/recall/internal/search"
	"github.com/notably/recall/internal/summarize"
)

type NotesServer struct {
	cfg        *config.Config
	repo       *models.NoteRepository
	searchSvc  *search.Service
	indexer    *search.Indexer
	summarizer *summarize.Summarizer
	mcpServer  *server.MCPServer
}

func NewNotesServer(cfg *config.Config, repo *models.NoteRepository, searchSvc *search.Service, indexer *search.Indexer) *NotesServer {
	ns := &NotesServer{
		cfg:        cfg,
		repo:       repo,
		searchSvc:  searchSvc,
		indexer:    indexer,
		summarizer: summarize.NewSummarizer(cfg),
	}

	ns.mcpServer = server.NewMCPServer(
		"recall",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	ns.registerTools()
	ns.registerResources()

	return ns
}

func (s *NotesServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *NotesServer) registerTools() {
	addNoteTool := mcp.NewTool("add_note",
		mcp.WithDescription("Add a new note"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the note"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The content of the note"),
		),
	)
	s.mcpServer.AddTool(addNoteTool, s.handleAddNote)

	findSimilarTool := mcp.NewTool("find_similar",
		mcp.WithDescription("Find notes similar to a query using embedding similarity with a text-overlap fallback"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text query to match notes against"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 5, capped at 20)"),
		),
		mcp.WithNumber("exclude_note_id",
			mcp.Description("Note ID to exclude from results, e.g. the note being edited"),
		),
	)
	s.mcpServer.AddTool(findSimilarTool, s.handleFindSimilar)

	getNoteTool := mcp.NewTool("get_note",
		mcp.WithDescription("Get a specific note by ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to retrieve"),
		),
	)
	s.mcpServer.AddTool(getNoteTool, s.handleGetNote)

	listNotesTool := mcp.NewTool("list_notes",
		mcp.WithDescription("List notes with optional limit and offset"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of notes to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of notes to skip"),
		),
	)
	s.mcpServer.AddTool(listNotesTool, s.handleListNotes)

	summarizeTool := mcp.NewTool("summarize_note",
		mcp.WithDescription("Generate and store a summary with key points for a note"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The ID of the note to summarize"),
		),
	)
	s.mcpServer.AddTool(summarizeTool, s.handleSummarizeNote)
}

func (s *NotesServer) registerResources() {
	recentResource := mcp.NewResource("notes://recent",
		"Recent Notes",
		mcp.WithResourceDescription("Get the most recently updated notes"),
		mcp.WithMIMEType("text/plain"),
	)
	s.mcpServer.AddResource(recentResource, s.handleRecentNotes)
}

// Tool handlers
func (s *NotesServer) handleAddNote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: add_note")

	title, err := request.RequireString("title")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'title': %w", err)
	}

	content, err := request.RequireString("content")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'content': %w", err)
	}

	note, err := s.repo.Create(title, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.IndexNote(note); err != nil {
			logger.Error("Failed to index note %d: %v", note.ID, err)
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Note created successfully with ID: %d\nTitle: %s", note.ID, note.Title)), nil
}

func (s *NotesServer) handleFindSimilar(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: find_similar")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}

	limit := request.GetInt("limit", 5)
	excludeID := request.GetInt("exclude_note_id", 0)

	response, err := s.searchSvc.Search(query, limit, excludeID)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if len(response.Results) == 0 {
		return mcp.NewToolResultText("No similar notes found."), nil
	}

	var sb strings.Builder
	mode := "embedding similarity"
	if response.FallbackMode {
		mode = "text overlap"
	}
	sb.WriteString(fmt.Sprintf("Found %d similar notes (%s):\n\n", len(response.Results), mode))
	for i, result := range response.Results {
		sb.WriteString(fmt.Sprintf("%d. [ID: %d] %s (score: %.2f)\n", i+1, result.Note.ID, result.Note.Title, result.Score))
		if len(result.MatchedTerms) > 0 {
			sb.WriteString(fmt.Sprintf("   Matched: %s\n", strings.Join(result.MatchedTerms, ", ")))
		}
		sb.WriteString(fmt.Sprintf("   %s\n\n", result.Preview))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *NotesServer) handleGetNote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: get_note")

	id, err := request.RequireInt("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	note, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	text := fmt.Sprintf("ID: %d\nTitle: %s\nCreated: %s\nUpdated: %s\n\n%s",
		note.ID, note.Title,
		note.CreatedAt.Format("2006-01-02 15:04:05"),
		note.UpdatedAt.Format("2006-01-02 15:04:05"),
		note.Content)
	if note.Summary != "" {
		text += fmt.Sprintf("\n\nSummary: %s", note.Summary)
	}

	return mcp.NewToolResultText(text), nil
}

func (s *NotesServer) handleListNotes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_notes")

	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)

	notes, err := s.repo.List(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d notes:\n\n", len(notes)))
	for _, note := range notes {
		sb.WriteString(fmt.Sprintf("[ID: %d] %s (created %s)\n",
			note.ID, note.Title, note.CreatedAt.Format("2006-01-02")))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *NotesServer) handleSummarizeNote(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: summarize_note")

	id, err := request.RequireInt("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}

	note, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	result, err := s.summarizer.SummarizeNote(note)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize note: %w", err)
	}

	if err := s.repo.UpdateSummary(id, result.Summary); err != nil {
		logger.Error("Failed to store summary for note %d: %v", id, err)
	}

	text := fmt.Sprintf("Summary of note %d (%s):\n\n%s", note.ID, note.Title, result.Summary)
	if len(result.KeyPoints) > 0 {
		text += "\n\nKey points:\n"
		for _, kp := range result.KeyPoints {
			text += fmt.Sprintf("- %s\n", kp)
		}
	}

	return mcp.NewToolResultText(text), nil
}

// Resource handlers
func (s *NotesServer) handleRecentNotes(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: notes://recent")

	notes, err := s.repo.List(10, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notes: %w", err)
	}

	content := "Recent Notes:\n\n"
	for i, note := range notes {
		content += fmt.Sprintf("%d. [ID: %d] %s\n   Created: %s\n   %s\n\n",
			i+1, note.ID, note.Title,
			note.CreatedAt.Format("2006-01-02 15:04:05"),
			truncateString(note.Content, 150))
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			Text: content,
		},
	}, nil
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
