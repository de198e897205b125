package hobby

import (
	"context"
	"fmt"
	"hash/fnv"
	"unicode"

	"yashubustudio/hobbyfinder/emb"
)

// HashEmbedder is a dependency-free embedder. It hashes lowercase tokens into a
// fixed-size vector, so equal texts always get equal vectors and texts sharing
// words point in similar directions.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns a HashEmbedder producing dim-sized vectors.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEmbedder{dim: dim}
}

// ModelID identifies the embedder and its dimension.
func (h *HashEmbedder) ModelID() string { return fmt.Sprintf("hash-%d", h.dim) }

// Close is a no-op.
func (h *HashEmbedder) Close() error { return nil }

// EmbedTexts hashes each text into an L2-normalized vector.
func (h *HashEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec := make([]float32, h.dim)
		for _, tok := range tokenize(normalizeKey(text)) {
			addHashedToken(vec, tok)
		}
		emb.Normalize(vec)
		out[i] = vec
	}
	return out, nil
}

func tokenize(text string) []string {
	var out []string
	start := -1
	for idx, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start == -1 {
				start = idx
			}
			continue
		}
		if start != -1 {
			out = append(out, text[start:idx])
			start = -1
		}
	}
	if start != -1 {
		out = append(out, text[start:])
	}
	return out
}

func addHashedToken(vec []float32, token string) {
	h := fnv64(token)
	idx := h % uint64(len(vec))
	sign := float32(1)
	if (h>>63)&1 == 1 {
		sign = -1
	}
	vec[idx] += sign
}

func fnv64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
