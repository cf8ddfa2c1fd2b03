package search

import (
	"context"

	"github.com/mobinnet/towersearch/internal/domain"
)

// Interpreter normalizes the raw query into keywords before embedding.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (domain.InterpretedQuery, error)
}

// Embedder vectorizes the normalized query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// BatchEmbedder vectorizes all catalog item texts in a single call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
