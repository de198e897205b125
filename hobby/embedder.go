package hobby

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"yashubustudio/hobbyfinder/emb"
)

// ErrNotInitialized is returned by embedders used after Close or before setup.
var ErrNotInitialized = errors.New("embedder is not initialized")

// Embedder is the narrow text-to-vector capability the index depends on.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
	ModelID() string
}

// ModelFactory constructs the embedder. Construction may fail, for example
// when the ONNX runtime or model files are missing.
type ModelFactory func(ctx context.Context) (Embedder, error)

// NewModelFactory returns a factory for the configured provider.
func NewModelFactory(cfg EmbedderConfig) ModelFactory {
	cfg.ApplyDefaults()
	return func(context.Context) (Embedder, error) {
		switch strings.ToLower(cfg.Provider) {
		case ProviderHash:
			return NewHashEmbedder(cfg.HashDim), nil
		case ProviderORT:
			enc, err := NewOrtEmbedder(cfg)
			if err != nil {
				return nil, err
			}
			return enc, nil
		default:
			return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
		}
	}
}

// maxCachedVectors bounds the per-text cache so free-text queries cannot grow
// it without limit.
const maxCachedVectors = 4096

// OrtEmbedder is a thin wrapper over emb.Encoder with an in-memory vector cache.
type OrtEmbedder struct {
	enc      *emb.Encoder
	modelID  string
	memCache map[string][]float32
	mu       sync.RWMutex
}

// NewOrtEmbedder initializes the ONNX encoder.
func NewOrtEmbedder(cfg EmbedderConfig) (*OrtEmbedder, error) {
	modelID := cfg.ModelID
	if modelID == "" && cfg.ModelPath != "" {
		modelID = filepath.Base(cfg.ModelPath)
	}
	encoder := &emb.Encoder{}
	if err := encoder.Init(emb.Config{
		OrtDLL:        cfg.OrtLibrary,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
	}); err != nil {
		return nil, err
	}
	return &OrtEmbedder{
		enc:      encoder,
		modelID:  modelID,
		memCache: make(map[string][]float32),
	}, nil
}

// Close releases ORT resources.
func (o *OrtEmbedder) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.enc != nil {
		o.enc.Close()
		o.enc = nil
	}
	o.memCache = nil
	return nil
}

// ModelID returns the identifier used for cache keys.
func (o *OrtEmbedder) ModelID() string {
	return o.modelID
}

// EmbedTexts embeds each text in order.
func (o *OrtEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := o.embedText(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (o *OrtEmbedder) embedText(text string) ([]float32, error) {
	o.mu.RLock()
	enc := o.enc
	o.mu.RUnlock()
	if enc == nil {
		return nil, ErrNotInitialized
	}
	normalized := NormalizeText(text)
	key := o.cacheKey(normalized)
	if vec := o.getFromCache(key); vec != nil {
		return vec, nil
	}
	vec, err := enc.Encode(normalized)
	if err != nil {
		return nil, err
	}
	o.storeInMemory(key, vec)
	return cloneVector(vec), nil
}

func (o *OrtEmbedder) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, o.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (o *OrtEmbedder) getFromCache(key string) []float32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if vec, ok := o.memCache[key]; ok {
		return cloneVector(vec)
	}
	return nil
}

func (o *OrtEmbedder) storeInMemory(key string, vec []float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.memCache != nil && len(o.memCache) < maxCachedVectors {
		o.memCache[key] = cloneVector(vec)
	}
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
