package domain

import (
	"context"
	"strings"
)

// InterpretedQuery is the normalized form of a raw search query,
// created fresh per search call and discarded afterwards.
type InterpretedQuery struct {
	Keywords []string
	// Facets carries auxiliary classifications mentioned explicitly in the
	// query (material type, condition). Not used by the ranker.
	Facets map[string]string
}

// IsEmpty reports whether interpretation produced no usable keywords.
func (q InterpretedQuery) IsEmpty() bool { return len(q.Keywords) == 0 }

// KeywordText joins keywords into the single string handed to the embedder.
func (q InterpretedQuery) KeywordText() string { return strings.Join(q.Keywords, " ") }

// Interpreter normalizes a raw free-text query (typos, slang,
// transliterations) into clean keywords suitable for embedding.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (InterpretedQuery, error)
}
