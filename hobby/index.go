package hobby

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"yashubustudio/hobbyfinder/internal/metrics"
)

// IndexOptions configures an Index.
type IndexOptions struct {
	// Model constructs the embedder on first use.
	Model ModelFactory
	// Store persists the matrix. A nil store disables persistence.
	Store *CacheStore
	// Logger receives cache and model failures. The zero value discards them.
	Logger zerolog.Logger
}

// IndexStatus describes the outcome of the last EnsureReady.
type IndexStatus struct {
	Enabled bool   `json:"enabled"`
	Source  string `json:"source"`
	Rows    int    `json:"rows"`
	Dim     int    `json:"dim"`
	ModelID string `json:"model_id,omitempty"`
}

// Index holds the hobby embedding matrix. It is safe for concurrent use; once
// EnsureReady returns, queries only read shared state.
type Index struct {
	opts IndexOptions
	log  zerolog.Logger

	mu     sync.RWMutex
	model  Embedder
	docs   []string
	matrix [][]float32
	size   int
	status IndexStatus
}

// NewIndex constructs a disabled index. Call EnsureReady before querying.
func NewIndex(opts IndexOptions) *Index {
	return &Index{
		opts:   opts,
		log:    opts.Logger.With().Str("component", "index").Logger(),
		status: IndexStatus{Source: metrics.SourceDisabled},
	}
}

// EnsureReady validates the persisted cache against cat and rebuilds it when
// stale. Failures leave the index disabled; they are logged, never returned.
func (idx *Index) EnsureReady(ctx context.Context, cat Catalog) IndexStatus {
	return idx.prepare(ctx, cat, false)
}

// Rebuild ignores any persisted cache and re-embeds the catalog.
func (idx *Index) Rebuild(ctx context.Context, cat Catalog) IndexStatus {
	return idx.prepare(ctx, cat, true)
}

func (idx *Index) prepare(ctx context.Context, cat Catalog, force bool) IndexStatus {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.size = cat.Len()
	model, err := idx.ensureModel(ctx)
	if err != nil {
		idx.log.Error().Err(err).Msg("embedding model unavailable, semantic search disabled")
		return idx.disable()
	}

	if !force && cat.Len() > 0 {
		if cache, ok := idx.loadCache(cat.Len()); ok {
			return idx.adopt(cache, metrics.SourceCache, model)
		}
	}

	if cat.Len() == 0 {
		idx.log.Warn().Msg("catalog is empty, semantic search disabled")
		return idx.disable()
	}

	docs := BuildDocuments(cat)
	vecs, err := model.EmbedTexts(ctx, docs)
	if err != nil {
		idx.log.Error().Err(err).Msg("embedding catalog failed, semantic search disabled")
		return idx.disable()
	}
	if len(vecs) != len(docs) {
		idx.log.Error().Int("documents", len(docs)).Int("vectors", len(vecs)).
			Msg("embedder returned wrong number of vectors, semantic search disabled")
		return idx.disable()
	}
	cache := &EmbeddingCache{Documents: docs, Matrix: vecs}
	if idx.opts.Store != nil {
		if err := idx.opts.Store.Save(cache); err != nil {
			idx.log.Warn().Err(err).Msg("persisting embedding cache failed, continuing with in-memory index")
		}
	}
	return idx.adopt(cache, metrics.SourceRebuilt, model)
}

// ensureModel must be called with idx.mu held.
func (idx *Index) ensureModel(ctx context.Context) (Embedder, error) {
	if idx.model != nil {
		return idx.model, nil
	}
	if idx.opts.Model == nil {
		return nil, errors.New("no embedding model configured")
	}
	model, err := idx.opts.Model(ctx)
	if err != nil {
		return nil, fmt.Errorf("create embedding model: %w", err)
	}
	if model == nil {
		return nil, errors.New("embedding model factory returned nil")
	}
	idx.model = model
	return model, nil
}

func (idx *Index) loadCache(n int) (*EmbeddingCache, bool) {
	if idx.opts.Store == nil {
		return nil, false
	}
	cache, err := idx.opts.Store.Load()
	if err != nil {
		if errors.Is(err, ErrCacheMissing) {
			idx.log.Info().Msg("no embedding cache on disk, building")
		} else {
			idx.log.Warn().Err(err).Msg("embedding cache unreadable, rebuilding")
		}
		return nil, false
	}
	if !cache.ValidFor(n) {
		idx.log.Warn().
			Int("catalog", n).
			Int("documents", len(cache.Documents)).
			Int("rows", len(cache.Matrix)).
			Msg("embedding cache does not match catalog, rebuilding")
		return nil, false
	}
	return cache, true
}

func (idx *Index) adopt(cache *EmbeddingCache, source string, model Embedder) IndexStatus {
	idx.docs = cache.Documents
	idx.matrix = cache.Matrix
	idx.status = IndexStatus{
		Enabled: true,
		Source:  source,
		Rows:    len(cache.Matrix),
		Dim:     cache.Dim(),
		ModelID: model.ModelID(),
	}
	metrics.IndexBuilds.WithLabelValues(source).Inc()
	metrics.IndexRows.Set(float64(len(cache.Matrix)))
	idx.log.Info().
		Str("source", source).
		Int("rows", idx.status.Rows).
		Int("dim", idx.status.Dim).
		Str("model", idx.status.ModelID).
		Msg("embedding index ready")
	return idx.status
}

func (idx *Index) disable() IndexStatus {
	idx.docs = []string{}
	idx.matrix = nil
	idx.status = IndexStatus{Source: metrics.SourceDisabled}
	metrics.IndexBuilds.WithLabelValues(metrics.SourceDisabled).Inc()
	metrics.IndexRows.Set(0)
	return idx.status
}

// Status returns the outcome of the last EnsureReady.
func (idx *Index) Status() IndexStatus {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.status
}

// Enabled reports whether queries use embeddings.
func (idx *Index) Enabled() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.matrix != nil
}

// Size returns the catalog size the index was prepared for.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// Documents returns a copy of the indexed documents in catalog order.
func (idx *Index) Documents() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.docs...)
}

// Query returns the k catalog indices closest to text with their cosine
// similarity, nearest first. When the index is disabled or the query cannot be
// embedded it returns the first k catalog positions with score 0.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]int, []float64) {
	indices, scores, _ := idx.Lookup(ctx, text, k)
	return indices, scores
}

// Lookup is Query that also reports whether the result came from embeddings
// rather than the catalog-order fallback.
func (idx *Index) Lookup(ctx context.Context, text string, k int) ([]int, []float64, bool) {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	idx.mu.RLock()
	model, matrix, size := idx.model, idx.matrix, idx.size
	idx.mu.RUnlock()

	if k <= 0 {
		return []int{}, []float64{}, false
	}
	if matrix == nil || model == nil {
		metrics.IndexQueries.WithLabelValues(metrics.OutcomeFallback).Inc()
		indices, scores := fallbackResult(k, size)
		return indices, scores, false
	}
	indices, scores, err := search(ctx, model, matrix, text, k)
	if err != nil {
		idx.log.Error().Err(err).Msg("semantic query failed, using catalog order")
		metrics.IndexQueries.WithLabelValues(metrics.OutcomeFallback).Inc()
		indices, scores := fallbackResult(k, size)
		return indices, scores, false
	}
	metrics.IndexQueries.WithLabelValues(metrics.OutcomeSemantic).Inc()
	return indices, scores, true
}

// Close releases the embedding model.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.model == nil {
		return nil
	}
	err := idx.model.Close()
	idx.model = nil
	idx.matrix = nil
	idx.status = IndexStatus{Source: metrics.SourceDisabled}
	return err
}

func search(ctx context.Context, model Embedder, matrix [][]float32, text string, k int) ([]int, []float64, error) {
	vecs, err := model.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, nil, errors.New("embedder returned no query vector")
	}
	query := vecs[0]
	distances := make([]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != len(query) {
			return nil, nil, fmt.Errorf("query dimension %d does not match row %d dimension %d", len(query), i, len(row))
		}
		distances[i] = 1 - cosineSimilarity(query, row)
	}
	order := make([]int, len(matrix))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})
	if len(order) > k {
		order = order[:k]
	}
	scores := make([]float64, len(order))
	for i, row := range order {
		scores[i] = 1 - distances[row]
	}
	return order, scores, nil
}

func fallbackResult(k, n int) ([]int, []float64) {
	if k > n {
		k = n
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	return indices, make([]float64, k)
}

// cosineSimilarity treats a zero vector as dissimilar to everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
