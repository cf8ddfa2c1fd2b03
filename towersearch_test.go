package towersearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/db"
)

type mockInterpreter struct {
	fn func(ctx context.Context, query string) (InterpretedQuery, error)
}

func (m *mockInterpreter) Interpret(ctx context.Context, query string) (InterpretedQuery, error) {
	return m.fn(ctx, query)
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.fn(ctx, text)
}

// memStore is an in-memory db.Store for cache wiring tests.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (s *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Ping(_ context.Context) error { return nil }

func (s *memStore) Close() {}

func (s *memStore) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

func TestNew_NoAPIKey(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no API key provided")
	}
}

func TestNew_CustomProviders(t *testing.T) {
	interp := &mockInterpreter{
		fn: func(_ context.Context, _ string) (InterpretedQuery, error) {
			return InterpretedQuery{Keywords: []string{"tower"}}, nil
		},
	}
	emb := &mockEmbedder{
		fn: func(_ context.Context, _ string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}

	c, err := New(WithEmbedder(emb), WithInterpreter(interp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	matches, err := c.Search(context.Background(), "dakal", []Item{
		{ID: "1", Code: "M100037152", Description: "TOWER SECTION 20M"},
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Item.ID != "1" {
		t.Errorf("unexpected match: %+v", matches[0])
	}
	if matches[0].Score < 0.999 {
		t.Errorf("expected score near 1.0, got %g", matches[0].Score)
	}
}

func TestWireClient_CachesCustomEmbedder(t *testing.T) {
	embedCalls := 0
	cfg := &clientConfig{logger: zap.NewNop()}
	WithEmbedder(&mockEmbedder{
		fn: func(_ context.Context, _ string) ([]float32, error) {
			embedCalls++
			return []float32{1, 0}, nil
		},
	})(cfg)
	WithInterpreter(&mockInterpreter{
		fn: func(_ context.Context, _ string) (InterpretedQuery, error) {
			return InterpretedQuery{Keywords: []string{"tower"}}, nil
		},
	})(cfg)

	store := newMemStore()
	c, err := wireClient(store, cfg)
	if err != nil {
		t.Fatalf("wireClient failed: %v", err)
	}
	defer c.Close()

	items := []Item{{ID: "1", Code: "M100037152", Description: "TOWER SECTION 20M"}}
	if _, err := c.Search(context.Background(), "dakal", items); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	// Query text plus one catalog text, both cache misses.
	if embedCalls != 2 {
		t.Fatalf("expected 2 provider calls on the first search, got %d", embedCalls)
	}
	if len(store.data) != 2 {
		t.Fatalf("expected 2 cached vectors, got %d", len(store.data))
	}

	if _, err := c.Search(context.Background(), "dakal", items); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if embedCalls != 2 {
		t.Errorf("expected the repeat search to hit the cache, provider calls went to %d", embedCalls)
	}
}

func TestClient_Search_InvalidItem(t *testing.T) {
	c := newMockedClient(t)
	defer c.Close()

	_, err := c.Search(context.Background(), "antenna", []Item{
		{ID: "", Code: "M1", Description: "ANTENNA"},
	})
	if err == nil {
		t.Fatal("expected error for item without id")
	}
}

func TestClient_Similar_ExcludesSource(t *testing.T) {
	c := newMockedClient(t)
	defer c.Close()

	source := Item{ID: "1", Code: "M100037152", Description: "TOWER SECTION 20M"}
	matches, err := c.Similar(context.Background(), source, []Item{
		source,
		{ID: "2", Code: "M100037153", Description: "TOWER SECTION 30M"},
	})
	if err != nil {
		t.Fatalf("similar failed: %v", err)
	}
	for _, m := range matches {
		if m.Item.ID == source.ID {
			t.Error("source suggested itself")
		}
	}
}

func TestInterpreterAdapter_Error(t *testing.T) {
	adapter := &interpreterAdapter{inner: &mockInterpreter{
		fn: func(_ context.Context, _ string) (InterpretedQuery, error) {
			return InterpretedQuery{}, errors.New("model down")
		},
	}}
	_, err := adapter.Interpret(context.Background(), "antenna")
	if err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	adapter := &embedderAdapter{inner: &mockEmbedder{
		fn: func(_ context.Context, _ string) ([]float32, error) {
			called = true
			return []float32{1, 2, 3}, nil
		},
	}}

	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}

	batch, err := adapter.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if len(batch.Embeddings) != 2 {
		t.Errorf("batch len = %d, want 2", len(batch.Embeddings))
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithAPIKey("sk-test")(cfg)
	if cfg.apiKey != "sk-test" {
		t.Errorf("apiKey = %q, want sk-test", cfg.apiKey)
	}

	WithEmbeddingModel("text-embedding-3-large", 1024)(cfg)
	if cfg.embeddingModel != "text-embedding-3-large" || cfg.dimensions != 1024 {
		t.Errorf("embedding = (%q, %d)", cfg.embeddingModel, cfg.dimensions)
	}

	WithThreshold(0.85)(cfg)
	if cfg.threshold != 0.85 {
		t.Errorf("threshold = %g, want 0.85", cfg.threshold)
	}

	WithLimit(5)(cfg)
	if cfg.limit != 5 {
		t.Errorf("limit = %d, want 5", cfg.limit)
	}

	WithRedisCache("localhost:6379", "secret")(cfg)
	if len(cfg.cacheAddrs) != 1 || cfg.cacheAddrs[0] != "localhost:6379" {
		t.Errorf("cacheAddrs = %v", cfg.cacheAddrs)
	}
	if cfg.cachePassword != "secret" {
		t.Errorf("cachePassword = %q, want secret", cfg.cachePassword)
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close() // must not panic
}

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(
		WithEmbedder(&mockEmbedder{
			fn: func(_ context.Context, _ string) ([]float32, error) {
				return []float32{1, 0}, nil
			},
		}),
		WithInterpreter(&mockInterpreter{
			fn: func(_ context.Context, query string) (InterpretedQuery, error) {
				return InterpretedQuery{Keywords: []string{query}}, nil
			},
		}),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}
