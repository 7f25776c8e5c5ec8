package embeddings

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/notably/recall/internal/config"
	"github.com/notably/recall/internal/constants"
	interrors "github.com/notably/recall/internal/errors"
	"github.com/notably/recall/internal/logger"
)

// Vector is a fixed-dimension embedding plus the model that produced it.
// Two vectors are only comparable when their models match.
type Vector struct {
	Values     []float32 `json:"values"`
	Model      string    `json:"model"`
	TokenCount int       `json:"token_count"`
}

func (v *Vector) Dimensions() int {
	return len(v.Values)
}

// Provider produces embedding vectors from text.
type Provider interface {
	Embed(text string) (*Vector, error)
}

// OllamaProvider requests embeddings from a local Ollama instance.
type OllamaProvider struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewOllamaProvider(cfg *config.Config) *OllamaProvider {
	return &OllamaProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *OllamaProvider) Embed(text string) (*Vector, error) {
	payload := map[string]interface{}{
		"model":  p.cfg.EmbeddingModel,
		"prompt": text,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := p.cfg.GetOllamaAPIURL("embeddings")
	logger.Debug("Requesting embedding from %s with model %s", apiURL, p.cfg.EmbeddingModel)

	start := time.Now()
	resp, err := p.httpClient.Post(apiURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to embedding service: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Embedding response status: %d, time: %v", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}

	logger.Debug("Got embedding with %d dimensions", len(result.Embedding))

	return &Vector{
		Values:     result.Embedding,
		Model:      p.cfg.EmbeddingModel,
		TokenCount: estimateTokens(text),
	}, nil
}

// estimateTokens approximates the token cost of a request. The embeddings
// endpoint does not report usage, so we use the usual ~4 chars per token.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). Vectors of different
// dimensions cannot be compared and fail the call. A zero-magnitude vector
// compares as 0 rather than dividing by zero.
func CosineSimilarity(a, b *Vector) (float64, error) {
	if a.Dimensions() != b.Dimensions() {
		return 0, fmt.Errorf("%w: %d vs %d", interrors.ErrDimensionMismatch, a.Dimensions(), b.Dimensions())
	}

	var dot, normA, normB float64
	for i := range a.Values {
		dot += float64(a.Values[i]) * float64(b.Values[i])
		normA += float64(a.Values[i]) * float64(a.Values[i])
		normB += float64(b.Values[i]) * float64(b.Values[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func ToBytes(values []float32) []byte {
	buf := new(bytes.Buffer)
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func FromBytes(data []byte) ([]float32, error) {
	if len(data)%constants.BytesPerFloat32 != 0 {
		return nil, interrors.ErrInvalidEmbeddingLength
	}

	values := make([]float32, len(data)/constants.BytesPerFloat32)
	buf := bytes.NewReader(data)
	for i := range values {
		if err := binary.Read(buf, binary.LittleEndian, &values[i]); err != nil {
			return nil, err
		}
	}
	return values, nil
}
