package towersearch

import (
	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
)

// engineEmbedder is the internal embedding contract the engine wires.
type engineEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

type clientConfig struct {
	apiKey           string
	baseURL          string
	embeddingModel   string
	dimensions       int
	interpreterModel string
	classifierModel  string
	threshold        float64
	limit            int
	cacheAddrs       []string
	cachePassword    string
	logger           *zap.Logger
	embedder         engineEmbedder
	interpreter      domain.Interpreter
}

// Option configures the Client.
type Option func(*clientConfig)

// WithAPIKey sets the OpenAI-compatible API key used by all model calls.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithEmbeddingModel sets the embedding model and its vector dimensions.
// dimensions 0 keeps the model default.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.embeddingModel = model
		c.dimensions = dimensions
	}
}

// WithInterpreterModel sets the chat model used for query interpretation.
func WithInterpreterModel(model string) Option {
	return func(c *clientConfig) { c.interpreterModel = model }
}

// WithClassifierModel sets the chat model used for location classification.
// Defaults to the interpreter model.
func WithClassifierModel(model string) Option {
	return func(c *clientConfig) { c.classifierModel = model }
}

// WithThreshold sets the inclusive cosine similarity cutoff.
func WithThreshold(threshold float64) Option {
	return func(c *clientConfig) { c.threshold = threshold }
}

// WithLimit caps the number of results per search. 0 = unlimited.
func WithLimit(limit int) Option {
	return func(c *clientConfig) { c.limit = limit }
}

// WithRedisCache enables the embedding cache backed by Redis.
func WithRedisCache(addr, password string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithEmbedder plugs in a custom embedding provider instead of the
// OpenAI-compatible API.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = &embedderAdapter{inner: e} }
}

// WithInterpreter plugs in a custom query interpreter instead of the
// OpenAI-compatible API.
func WithInterpreter(i Interpreter) Option {
	return func(c *clientConfig) { c.interpreter = &interpreterAdapter{inner: i} }
}
