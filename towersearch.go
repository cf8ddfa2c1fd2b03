// Package towersearch embeds the semantic catalog search engine in a Go
// process, without running the HTTP server. The caller supplies the
// catalog snapshot on every call; the engine holds no inventory state.
package towersearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/db"
	dbRedis "github.com/mobinnet/towersearch/internal/db/redis"
	"github.com/mobinnet/towersearch/internal/domain"
	"github.com/mobinnet/towersearch/internal/repository/embcache"
	openaiTransport "github.com/mobinnet/towersearch/internal/transport/openai"
	classifyuc "github.com/mobinnet/towersearch/internal/usecase/classify"
	searchuc "github.com/mobinnet/towersearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the towersearch SDK entry point.
type Client struct {
	store       db.Store
	searchSvc   *searchuc.Service
	classifySvc *classifyuc.Service
}

// New creates a towersearch Client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel:   "text-embedding-3-small",
		interpreterModel: "gpt-4o-mini",
		threshold:        searchuc.DefaultThreshold,
		logger:           zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.apiKey == "" && (cfg.embedder == nil || cfg.interpreter == nil) {
		return nil, errors.New("towersearch: API key required (use WithAPIKey, or supply WithEmbedder and WithInterpreter)")
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("towersearch: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("towersearch: cache store not ready: %w", err)
		}
		store = s
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	var embedder engineEmbedder = cfg.embedder
	if embedder == nil {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
	}
	// The cache wraps whichever embedder is in play, custom ones included.
	if store != nil {
		embedder = embcache.New(embedder, store, "", nil, cfg.logger)
	}

	interpreter := cfg.interpreter
	if interpreter == nil {
		interpreter = openaiTransport.NewInterpreter(&openaiTransport.InterpreterConfig{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Model:   cfg.interpreterModel,
			Logger:  cfg.logger,
		})
	}

	searchSvc := searchuc.New(interpreter, embedder, embedder).WithThreshold(cfg.threshold)
	if cfg.limit > 0 {
		searchSvc = searchSvc.WithLimit(cfg.limit)
	}

	classifierModel := cfg.classifierModel
	if classifierModel == "" {
		classifierModel = cfg.interpreterModel
	}
	classifySvc := classifyuc.New(openaiTransport.NewClassifier(&openaiTransport.ClassifierConfig{
		APIKey:  cfg.apiKey,
		BaseURL: cfg.baseURL,
		Model:   classifierModel,
		Logger:  cfg.logger,
	}))

	return &Client{
		store:       store,
		searchSvc:   searchSvc,
		classifySvc: classifySvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Search finds catalog items relevant to a free-text query. An empty
// query or catalog yields an empty result, not an error.
func (c *Client) Search(ctx context.Context, query string, items []Item) ([]Match, error) {
	domItems, err := itemsToDomain(items)
	if err != nil {
		return nil, err
	}

	matches, err := c.searchSvc.Search(ctx, query, domItems)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return matchesFromDomain(matches), nil
}

// Similar suggests catalog items resembling the source item. The source
// is never included in its own suggestions.
func (c *Client) Similar(ctx context.Context, source Item, items []Item) ([]Match, error) {
	domSource, err := source.toDomain()
	if err != nil {
		return nil, err
	}
	domItems, err := itemsToDomain(items)
	if err != nil {
		return nil, err
	}

	matches, err := c.searchSvc.Similar(ctx, domSource, domItems)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	return matchesFromDomain(matches), nil
}

// Classify predicts the install location of a material on a tower site.
func (c *Client) Classify(ctx context.Context, item Item) (Location, error) {
	domItem, err := item.toDomain()
	if err != nil {
		return "", err
	}

	loc, err := c.classifySvc.Classify(ctx, domItem)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	return Location(loc), nil
}

// interpreterAdapter wraps the public Interpreter to satisfy the internal contract.
type interpreterAdapter struct {
	inner Interpreter
}

func (a *interpreterAdapter) Interpret(ctx context.Context, query string) (domain.InterpretedQuery, error) {
	r, err := a.inner.Interpret(ctx, query)
	if err != nil {
		return domain.InterpretedQuery{}, fmt.Errorf("interpret: %w", err)
	}
	return domain.InterpretedQuery{Keywords: r.Keywords, Facets: r.Facets}, nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal contracts.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, a, texts)
}
