package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
	"github.com/mobinnet/towersearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterProviderMetrics()
	os.Exit(m.Run())
}

// embeddingData mirrors one element of the OpenAI embedding response.
type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func newEmbeddingServer(t *testing.T, vecs [][]float32, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if requests != nil {
			*requests++
		}

		resp := embeddingResponse{Object: "list", Model: "test-model"}
		// Respond in reverse order to prove pairing goes by index, not
		// slice position.
		for i := len(vecs) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Object:    "embedding",
				Embedding: vecs[i],
				Index:     i,
			})
		}
		resp.Usage.PromptTokens = 7
		resp.Usage.TotalTokens = 7

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testEmbedder(url string) *Embedder {
	return NewEmbedder(&EmbedderConfig{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3}
	server := newEmbeddingServer(t, [][]float32{want}, nil)
	defer server.Close()

	result, err := testEmbedder(server.URL).Embed(context.Background(), "tower section")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Embedding) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(result.Embedding))
	}
	for i, v := range result.Embedding {
		if v != want[i] {
			t.Errorf("vec[%d] = %f, want %f", i, v, want[i])
		}
	}
	if result.TotalTokens != 7 {
		t.Errorf("expected usage passed through, got %d", result.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_PairsByIndex(t *testing.T) {
	vecs := [][]float32{{1, 0}, {0, 1}, {0.5, 0.5}}
	server := newEmbeddingServer(t, vecs, nil)
	defer server.Close()

	result, err := testEmbedder(server.URL).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(result.Embeddings) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(result.Embeddings))
	}
	for i := range vecs {
		for j := range vecs[i] {
			if result.Embeddings[i][j] != vecs[i][j] {
				t.Errorf("vec[%d][%d] = %f, want %f", i, j, result.Embeddings[i][j], vecs[i][j])
			}
		}
	}
}

func TestEmbedder_BatchEmbed_EmptyBatchSkipsProvider(t *testing.T) {
	var requests int
	server := newEmbeddingServer(t, nil, &requests)
	defer server.Close()

	result, err := testEmbedder(server.URL).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(result.Embeddings) != 0 {
		t.Errorf("expected no vectors, got %d", len(result.Embeddings))
	}
	if requests != 0 {
		t.Errorf("empty batch must not call the provider, got %d requests", requests)
	}
}

func TestEmbedder_BatchEmbed_ShortResponse(t *testing.T) {
	server := newEmbeddingServer(t, [][]float32{{1}}, nil) // one vector for two inputs
	defer server.Close()

	_, err := testEmbedder(server.URL).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"quota exceeded"}`))
	}))
	defer server.Close()

	_, err := testEmbedder(server.URL).Embed(context.Background(), "tower")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_EmptyResponse(t *testing.T) {
	server := newEmbeddingServer(t, nil, nil)
	defer server.Close()

	_, err := testEmbedder(server.URL).Embed(context.Background(), "tower")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError for empty data, got %v", err)
	}
}
