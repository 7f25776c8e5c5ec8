package constants

// Ranking and search limits
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 20
	DefaultListLimit   = 20

	MinTokenLength = 2
	MaxQueryTokens = 10
	MinMatchScore  = 0.1
)

// Text truncation lengths
const (
	PreviewLength      = 150
	CacheKeyQueryChars = 100
)

// Embedding pipeline limits
const (
	MinEmbeddingInput = 10
	MaxEmbeddingInput = 8000
	MinEmbeddingWords = 10

	BytesPerFloat32 = 4
)

// Recall cache defaults
const (
	DefaultDebounceMillis = 600
	DefaultCacheSize      = 50
	MinRecallQueryLength  = 5
)

// File permissions
const (
	ConfigFileMode = 0600 // Secure file permissions for config
)
