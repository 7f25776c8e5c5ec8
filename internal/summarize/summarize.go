package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notably/recall/internal/config"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
)

// Summarizer provides text summarization capabilities
type Summarizer struct {
	cfg         *config.Config
	model       string
	maxTokens   int
	temperature float32
	httpClient  *http.Client
}

// SummaryResult contains the summarized content
type SummaryResult struct {
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
	TokenCount     int      `json:"token_count"`
	OriginalLength int      `json:"original_length"`
	SummaryLength  int      `json:"summary_length"`
	Model          string   `json:"model"`
}

// NewSummarizer creates a new summarizer instance
func NewSummarizer(cfg *config.Config) *Summarizer {
	model := cfg.SummarizationModel
	if model == "" {
		model = "llama3.2:latest"
	}
	return &Summarizer{
		cfg:         cfg,
		model:       model,
		maxTokens:   500,
		temperature: 0.3, // Lower temperature for more focused summaries
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetModel allows changing the model used for summarization
func (s *Summarizer) SetModel(model string) {
	s.model = model
}

// SummarizeNote creates a summary of a single note with its key points.
// Summarization is opportunistic: callers log failures and move on, they
// never fail the operation that triggered it.
func (s *Summarizer) SummarizeNote(note *models.Note) (*SummaryResult, error) {
	content := fmt.Sprintf("Title: %s\n\nContent:\n%s", note.Title, note.Content)

	prompt := fmt.Sprintf(`Please provide a concise summary of the following note,
followed by its key points as a bulleted list (each starting with "- ").
Focus on the main ideas. Keep the summary brief but informative.

%s

Summary:`, content)

	raw, tokens, err := s.callOllama(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	summary, keyPoints := splitKeyPoints(raw)

	return &SummaryResult{
		Summary:        summary,
		KeyPoints:      keyPoints,
		TokenCount:     tokens,
		OriginalLength: len(content),
		SummaryLength:  len(summary),
		Model:          s.model,
	}, nil
}

// SummarizeResults creates a combined summary of ranked search results.
func (s *Summarizer) SummarizeResults(notes []*models.Note, query string) (*SummaryResult, error) {
	var contentBuilder strings.Builder

	if query != "" {
		contentBuilder.WriteString(fmt.Sprintf("Search Query: '%s'\n\nSearch Results:\n\n", query))
	}

	for i, note := range notes {
		contentBuilder.WriteString(fmt.Sprintf("Note %d (ID: %d)\n", i+1, note.ID))
		contentBuilder.WriteString(fmt.Sprintf("Title: %s\n", note.Title))

		// Truncate very long notes in multi-note summaries
		content := note.Content
		if len(content) > 1000 {
			content = content[:1000] + "..."
		}
		contentBuilder.WriteString(fmt.Sprintf("Content: %s\n\n---\n\n", content))
	}

	fullContent := contentBuilder.String()

	prompt := fmt.Sprintf(`Please provide a comprehensive summary of the following notes.
Identify key themes and important information across all notes, then list the
key points as a bulleted list (each starting with "- ").

%s

Summary:`, fullContent)

	raw, tokens, err := s.callOllama(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	summary, keyPoints := splitKeyPoints(raw)

	return &SummaryResult{
		Summary:        summary,
		KeyPoints:      keyPoints,
		TokenCount:     tokens,
		OriginalLength: len(fullContent),
		SummaryLength:  len(summary),
		Model:          s.model,
	}, nil
}

// splitKeyPoints separates the prose summary from trailing "- " bullets.
func splitKeyPoints(raw string) (string, []string) {
	var summaryLines, keyPoints []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			keyPoints = append(keyPoints, strings.TrimSpace(strings.TrimPrefix(trimmed, "- ")))
		} else if trimmed != "" {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	return strings.Join(summaryLines, " "), keyPoints
}

// callOllama makes a request to the Ollama API for text generation
func (s *Summarizer) callOllama(prompt string) (string, int, error) {
	if s.cfg.OllamaEndpoint == "" {
		return "", 0, fmt.Errorf("Ollama endpoint not configured")
	}

	payload := map[string]interface{}{
		"model":       s.model,
		"prompt":      prompt,
		"temperature": s.temperature,
		"stream":      false,
		"options": map[string]interface{}{
			"num_predict": s.maxTokens,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := s.cfg.GetOllamaAPIURL("generate")
	logger.Debug("Requesting summary from %s with model %s", apiURL, s.model)

	start := time.Now()
	resp, err := s.httpClient.Post(apiURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		logger.Error("Ollama API error: %v", err)
		return "", 0, fmt.Errorf("failed to connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Ollama response status: %d, time: %v", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Response  string `json:"response"`
		Done      bool   `json:"done"`
		EvalCount int    `json:"eval_count"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", 0, fmt.Errorf("failed to parse response: %w", err)
	}

	return strings.TrimSpace(result.Response), result.EvalCount, nil
}
