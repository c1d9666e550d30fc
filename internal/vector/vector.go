// Package vector maintains a persistent similarity index over space and
// module content, backed by chromem-go.
package vector

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/goalspace/goalspace/internal/embedding"
)

const collectionName = "documents"

// Result is one similarity hit.
type Result struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float32           `json:"score"`
}

// Index is a persistent document similarity index.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *log.Logger
	mu         sync.RWMutex
}

// NewIndex opens or creates the index at dir, embedding with emb.
func NewIndex(dir string, emb embedding.Embedder, logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	embFunc := chromem.EmbeddingFunc(func(ctx context.Context, text string) ([]float32, error) {
		return emb.Embed(ctx, text)
	})

	collection, err := db.GetOrCreateCollection(collectionName, nil, embFunc)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &Index{db: db, collection: collection, logger: logger}, nil
}

// IndexDocument stores or replaces one document in the index.
func (ix *Index) IndexDocument(ctx context.Context, id, content string, metadata map[string]string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.collection.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	})
}

// FindSimilar returns up to n documents ranked by similarity to the query,
// keeping only scores at or above minScore. A failed or empty query degrades
// to an empty list; the caller never sees an error.
func (ix *Index) FindSimilar(ctx context.Context, query string, n int, minScore float32) []Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if n <= 0 {
		n = 5
	}
	if count := ix.collection.Count(); count < n {
		n = count
	}
	if n == 0 {
		return []Result{}
	}

	hits, err := ix.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		ix.logger.Printf("similarity query failed: %v", err)
		return []Result{}
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Similarity < minScore {
			continue
		}
		results = append(results, Result{
			ID:       h.ID,
			Content:  h.Content,
			Metadata: h.Metadata,
			Score:    h.Similarity,
		})
	}
	return results
}

// Count returns the number of indexed documents.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.collection.Count()
}

// Delete removes documents by id.
func (ix *Index) Delete(ctx context.Context, ids ...string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.collection.Delete(ctx, nil, nil, ids...)
}
