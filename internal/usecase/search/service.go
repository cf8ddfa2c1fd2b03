// Package search implements the semantic catalog search pipeline:
// guard, interpret, embed query, embed catalog, rank.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mobinnet/towersearch/internal/domain"
	"github.com/mobinnet/towersearch/internal/domain/vector"
)

// DefaultThreshold is the inclusive cosine similarity cutoff.
const DefaultThreshold = 0.7

// Service runs the search pipeline over a caller-supplied catalog snapshot.
// It holds no state between calls, so concurrent searches need no locking.
type Service struct {
	interp    Interpreter
	query     Embedder
	catalog   BatchEmbedder
	threshold float64
	limit     int
}

// New creates a search service with the default threshold and no result cap.
func New(interp Interpreter, query Embedder, catalog BatchEmbedder) *Service {
	return &Service{
		interp:    interp,
		query:     query,
		catalog:   catalog,
		threshold: DefaultThreshold,
	}
}

// WithThreshold returns a copy using another inclusive similarity cutoff.
func (s *Service) WithThreshold(threshold float64) *Service {
	c := *s
	c.threshold = threshold
	return &c
}

// WithLimit returns a copy capping the number of results. 0 = unlimited.
func (s *Service) WithLimit(limit int) *Service {
	c := *s
	c.limit = limit
	return &c
}

// Threshold returns the inclusive similarity cutoff in effect.
func (s *Service) Threshold() float64 { return s.threshold }

// Search finds catalog items semantically relevant to a free-text query.
//
// Empty or whitespace-only queries and empty catalogs short-circuit to an
// empty result without any provider call. Items without a description are
// skipped, not errored. Results are the original items, sorted descending
// by similarity score; items scoring exactly at the threshold are included.
//
// A failed interpretation or embedding aborts the whole search: no partial
// result is ever synthesized, so callers can tell "no matches" (nil, nil)
// from "search could not be performed" (nil, err).
func (s *Service) Search(ctx context.Context, query string, items []domain.Item) ([]domain.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 {
		return nil, nil
	}
	if err := validateCatalog(items); err != nil {
		return nil, err
	}

	interpreted, err := s.interp.Interpret(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}
	if interpreted.IsEmpty() {
		return nil, nil
	}

	scored, texts := matchableTexts(items)
	if len(texts) == 0 {
		return nil, nil
	}

	queryRes, err := s.query.Embed(ctx, interpreted.KeywordText())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	batchRes, err := s.catalog.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	if len(batchRes.Embeddings) != len(texts) {
		return nil, fmt.Errorf("catalog batch returned %d vectors for %d texts: %w",
			len(batchRes.Embeddings), len(texts), domain.ErrEmbeddingProviderError)
	}

	return s.rank(queryRes.Embedding, items, scored, batchRes.Embeddings)
}

// Similar ranks catalog items against one source item, for "similar
// materials" suggestions. Source and candidates are embedded in a single
// batch call; the source never suggests itself.
func (s *Service) Similar(ctx context.Context, source domain.Item, items []domain.Item) ([]domain.Match, error) {
	if !source.Matchable() {
		return nil, fmt.Errorf("%w: source item has no description", domain.ErrInvalidItem)
	}
	if len(items) == 0 {
		return nil, nil
	}
	if err := validateCatalog(items); err != nil {
		return nil, err
	}

	candidates := make([]domain.Item, 0, len(items))
	for i := range items {
		if items[i].ID() == source.ID() {
			continue
		}
		candidates = append(candidates, items[i])
	}

	scored, texts := matchableTexts(candidates)
	if len(texts) == 0 {
		return nil, nil
	}

	// Source text goes first so one batch call covers both sides.
	batchRes, err := s.catalog.BatchEmbed(ctx, append([]string{source.SearchText()}, texts...))
	if err != nil {
		return nil, fmt.Errorf("embed source and catalog: %w", err)
	}
	if len(batchRes.Embeddings) != len(texts)+1 {
		return nil, fmt.Errorf("batch returned %d vectors for %d texts: %w",
			len(batchRes.Embeddings), len(texts)+1, domain.ErrEmbeddingProviderError)
	}

	return s.rank(batchRes.Embeddings[0], candidates, scored, batchRes.Embeddings[1:])
}

// rank scores item vectors against the query vector, keeps items at or
// above the threshold and sorts descending by score. scored maps each
// vector back to its source item index.
func (s *Service) rank(queryVec []float32, items []domain.Item, scored []int, vecs [][]float32) ([]domain.Match, error) {
	matches := make([]domain.Match, 0, len(scored))
	for n, i := range scored {
		if len(vecs[n]) != len(queryVec) {
			return nil, fmt.Errorf("item %s: got %d dims, query has %d: %w",
				items[i].ID(), len(vecs[n]), len(queryVec), domain.ErrVectorDimMismatch)
		}
		score := vector.Cosine(queryVec, vecs[n])
		if score >= s.threshold {
			matches = append(matches, domain.NewMatch(items[i], score))
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score() > matches[b].Score()
	})

	if s.limit > 0 && len(matches) > s.limit {
		matches = matches[:s.limit]
	}
	return matches, nil
}

// matchableTexts collects the embeddable text of items with a description,
// preserving catalog order. Returns item indices aligned with texts.
func matchableTexts(items []domain.Item) ([]int, []string) {
	scored := make([]int, 0, len(items))
	texts := make([]string, 0, len(items))
	for i := range items {
		if !items[i].Matchable() {
			continue
		}
		scored = append(scored, i)
		texts = append(texts, items[i].SearchText())
	}
	return scored, texts
}

// validateCatalog enforces the snapshot invariant: ids unique per call.
func validateCatalog(items []domain.Item) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := items[i].ID()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate item id %q", domain.ErrInvalidItem, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
