package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
)

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 5}, nil
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func TestInstrumented_Embed(t *testing.T) {
	inner := &mockEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "openai", "text-embedding-3-small", zap.NewNop())

	res, err := emb.Embed(context.Background(), "tower")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("expected inner result passed through, got %v", res.Embedding)
	}
}

func TestInstrumented_EmbedError(t *testing.T) {
	wantErr := errors.New("down")
	emb := NewInstrumentedEmbedder(&mockEmbedder{err: wantErr}, "openai", "m", zap.NewNop())

	_, err := emb.Embed(context.Background(), "tower")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstrumented_BatchUsesNativeBatch(t *testing.T) {
	inner := &mockBatchEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "openai", "m", zap.NewNop())

	res, err := emb.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(res.Embeddings))
	}
	if inner.batchCalls != 1 || inner.calls != 0 {
		t.Errorf("expected native batch path, got batch=%d single=%d", inner.batchCalls, inner.calls)
	}
}

func TestInstrumented_BatchFallsBackPerText(t *testing.T) {
	inner := &mockEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "openai", "m", zap.NewNop())

	if _, err := emb.BatchEmbed(context.Background(), []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 fallback calls, got %d", inner.calls)
	}
}

func TestInstrumented_EmptyBatchSkipsInner(t *testing.T) {
	inner := &mockBatchEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "openai", "m", zap.NewNop())

	res, err := emb.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 0 || inner.batchCalls != 0 {
		t.Error("empty batch must not reach the inner embedder")
	}
}
