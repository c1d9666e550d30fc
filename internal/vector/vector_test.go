package vector

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goalspace/goalspace/internal/embedding"
)

// wordEmbedder maps known words onto fixed axes so similarity is
// deterministic without a network.
type wordEmbedder struct {
	fail bool
}

func (e *wordEmbedder) Embed(_ context.Context, text string) (embedding.Vector, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding backend unreachable")
	}
	v := embedding.Vector{0, 0, 0}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "goroutine") {
		v[0] = 1
	}
	if strings.Contains(lower, "channel") {
		v[1] = 1
	}
	if strings.Contains(lower, "spanish") {
		v[2] = 1
	}
	embedding.Normalize(v)
	return v, nil
}

func (e *wordEmbedder) Dims() int { return 3 }

func newTestIndex(t *testing.T, emb embedding.Embedder) *Index {
	t.Helper()
	ix, err := NewIndex(t.TempDir(), emb, nil)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	return ix
}

func TestFindSimilar_RanksByContent(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndex(t, &wordEmbedder{})

	ix.IndexDocument(ctx, "d1", "goroutine scheduling and channel select", map[string]string{"space": "sp1"})
	ix.IndexDocument(ctx, "d2", "spanish verb conjugation", map[string]string{"space": "sp2"})

	results := ix.FindSimilar(ctx, "how do goroutine works", 5, 0.1)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != "d1" {
		t.Errorf("expected d1 first, got %s", results[0].ID)
	}
	if results[0].Metadata["space"] != "sp1" {
		t.Errorf("metadata lost: %v", results[0].Metadata)
	}
}

func TestFindSimilar_EmptyIndex(t *testing.T) {
	ix := newTestIndex(t, &wordEmbedder{})

	results := ix.FindSimilar(context.Background(), "anything", 5, 0)
	if len(results) != 0 {
		t.Errorf("expected empty result, got %v", results)
	}
}

func TestFindSimilar_UnreachableBackendDegrades(t *testing.T) {
	ctx := context.Background()
	emb := &wordEmbedder{}
	ix := newTestIndex(t, emb)
	ix.IndexDocument(ctx, "d1", "goroutine content", nil)

	// Embedder goes away after indexing: queries degrade to empty, no error
	emb.fail = true
	results := ix.FindSimilar(ctx, "goroutine", 5, 0)
	if len(results) != 0 {
		t.Errorf("expected empty result from unreachable backend, got %v", results)
	}
}

func TestIndexDocument_FailedEmbedding(t *testing.T) {
	ix := newTestIndex(t, &wordEmbedder{fail: true})

	if err := ix.IndexDocument(context.Background(), "d1", "content", nil); err == nil {
		t.Error("expected error when embedding fails at index time")
	}
}

func TestNewIndex_RequiresEmbedder(t *testing.T) {
	if _, err := NewIndex(t.TempDir(), nil, nil); err == nil {
		t.Error("expected error for nil embedder")
	}
}
