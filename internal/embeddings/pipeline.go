package embeddings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notably/recall/internal/constants"
	interrors "github.com/notably/recall/internal/errors"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()\-]`)

	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownMarkerRe  = regexp.MustCompile("[*_`~]+")

	// System-generated status text that carries no semantic content worth a
	// paid embedding call.
	metadataPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^file:`),
		regexp.MustCompile(`(?i)^status:`),
		regexp.MustCompile(`(?i)^processing`),
		regexp.MustCompile(`(?i)^\d{1,3}%(\s+confidence)?\s*$`),
	}
)

// Pipeline validates and normalizes text before handing it to a Provider.
type Pipeline struct {
	provider Provider
}

func NewPipeline(provider Provider) *Pipeline {
	return &Pipeline{provider: provider}
}

// Generate produces an embedding for text. Trimmed input under 10 characters
// fails with ErrInputTooShort: short strings make unreliable vectors and
// waste a metered call. Normalization and the 8000-char cap happen locally
// so the remote call never fails on oversized input.
func (p *Pipeline) Generate(text string) (*Vector, error) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < constants.MinEmbeddingInput {
		return nil, fmt.Errorf("%w: got %d characters, need at least %d",
			interrors.ErrInputTooShort, len([]rune(trimmed)), constants.MinEmbeddingInput)
	}

	normalized := Normalize(trimmed)
	return p.provider.Embed(normalized)
}

// Normalize collapses whitespace, strips characters outside word and basic
// punctuation ranges, and truncates to the service's maximum input length.
func Normalize(text string) string {
	out := unsafeRe.ReplaceAllString(text, " ")
	out = whitespaceRe.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	runes := []rune(out)
	if len(runes) > constants.MaxEmbeddingInput {
		out = string(runes[:constants.MaxEmbeddingInput])
	}
	return out
}

// PrepareContent strips markdown markup so the embedding captures the
// semantic content rather than formatting noise. Lossy on purpose.
func PrepareContent(text string) string {
	out := markdownHeadingRe.ReplaceAllString(text, "")
	out = markdownMarkerRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// ShouldEmbed reports whether text is worth an embedding call: at least 10
// normalized words and not one of the metadata-only status patterns.
func ShouldEmbed(text string) bool {
	prepared := PrepareContent(text)

	for _, pattern := range metadataPatterns {
		if pattern.MatchString(strings.TrimSpace(text)) || pattern.MatchString(prepared) {
			return false
		}
	}

	return len(strings.Fields(prepared)) >= constants.MinEmbeddingWords
}
