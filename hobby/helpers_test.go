package hobby

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps another embedder and records how often it is called.
type countingEmbedder struct {
	mu        sync.Mutex
	inner     Embedder
	calls     int
	texts     int
	failAfter int // fail every call after this many successful ones; 0 disables
}

func (c *countingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.calls++
	calls := c.calls
	c.texts += len(texts)
	c.mu.Unlock()
	if c.failAfter > 0 && calls > c.failAfter {
		return nil, errors.New("encoder crashed")
	}
	return c.inner.EmbedTexts(ctx, texts)
}

func (c *countingEmbedder) Close() error   { return nil }
func (c *countingEmbedder) ModelID() string { return c.inner.ModelID() }

func (c *countingEmbedder) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func factoryFor(e Embedder) ModelFactory {
	return func(context.Context) (Embedder, error) { return e, nil }
}

func failingFactory(context.Context) (Embedder, error) {
	return nil, errors.New("model files not found")
}

func testStore(t *testing.T) *CacheStore {
	t.Helper()
	dir := t.TempDir()
	return &CacheStore{
		MatrixPath:    dir + "/hobby_emb.npy",
		DocumentsPath: dir + "/hobby_docs.json",
	}
}

const testCatalogJSON = `[
  {"name": "Chess", "short": "Classic strategy board game", "interests": ["chess", "strategy"],
   "pref_indoor": 1, "creative": 0, "social": 1, "cost_level": 1, "time_hours": 2,
   "how_to_start": ["Learn the moves", "Play online"], "cost_label": "Low", "difficulty": "Medium"},
  {"name": "Hiking", "short": "Walking mountain trails", "interests": ["outdoors", "fitness"],
   "pref_indoor": -2, "creative": 0, "social": -1, "cost_level": 2, "time_per_week_hours": 6},
  {"name": "Painting", "short": "Watercolor and acrylic art", "interests": ["art", "creative"],
   "pref_indoor": 1, "creative": 1, "social": 1, "cost_level": 3, "time_hours": 3}
]`

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	cat, err := ParseCatalog([]byte(testCatalogJSON))
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())
	return cat
}
