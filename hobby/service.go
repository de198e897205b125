package hobby

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"yashubustudio/hobbyfinder/internal/metrics"
)

// ServiceOptions wires the catalog, index and ranking settings.
type ServiceOptions struct {
	CatalogPath string
	Index       *Index
	Ranking     RankingConfig
	Logger      zerolog.Logger
}

// Service is the process-wide application state: the catalog and its
// embedding index. It is built once and read-only afterwards.
type Service struct {
	catalog Catalog
	index   *Index
	ranking RankingConfig
	logger  zerolog.Logger
}

// RecommendRequest is the body accepted by Recommend.
type RecommendRequest struct {
	Answers
	TopK int    `json:"top_k,omitempty" validate:"gte=0,lte=100"`
	Mode string `json:"mode,omitempty" validate:"omitempty,max=16"`
}

// Recommendation is a ranked, capped result list.
type Recommendation struct {
	Mode     Mode     `json:"mode"`
	Semantic bool     `json:"semantic"`
	Results  []Result `json:"results"`
}

// SearchHit is one raw index result.
type SearchHit struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Health summarizes what the service is serving.
type Health struct {
	Status  string      `json:"status"`
	Hobbies int         `json:"hobbies"`
	Index   IndexStatus `json:"index"`
}

// NewService loads the catalog and prepares the index, in that order. It never
// fails: a missing catalog yields an empty one and a broken model disables
// semantic search.
func NewService(ctx context.Context, opts ServiceOptions) *Service {
	logger := opts.Logger.With().Str("component", "service").Logger()

	cat, err := LoadCatalog(opts.CatalogPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load hobbies")
	}
	logger.Info().Int("count", cat.Len()).Str("path", opts.CatalogPath).Msg("loaded hobbies")

	return NewServiceFromCatalog(ctx, cat, opts)
}

// NewServiceFromCatalog prepares the index for an already loaded catalog.
func NewServiceFromCatalog(ctx context.Context, cat Catalog, opts ServiceOptions) *Service {
	opts.Ranking.ApplyDefaults()
	idx := opts.Index
	if idx == nil {
		idx = NewIndex(IndexOptions{Logger: opts.Logger})
	}
	idx.EnsureReady(ctx, cat)
	return &Service{
		catalog: cat,
		index:   idx,
		ranking: opts.Ranking,
		logger:  opts.Logger.With().Str("component", "service").Logger(),
	}
}

// Close releases the embedding model.
func (s *Service) Close() error {
	return s.index.Close()
}

// Catalog returns the loaded catalog. Callers must not modify it.
func (s *Service) Catalog() Catalog { return s.catalog }

// Index returns the embedding index.
func (s *Service) Index() *Index { return s.index }

// Ranking returns the effective ranking settings.
func (s *Service) Ranking() RankingConfig { return s.ranking }

// Health reports "ok" when semantic search is available and "degraded" when
// only rule ranking is.
func (s *Service) Health() Health {
	status := s.index.Status()
	h := Health{Status: "ok", Hobbies: s.catalog.Len(), Index: status}
	if !status.Enabled {
		h.Status = "degraded"
	}
	return h
}

// Recommend ranks the catalog for one set of answers.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) Recommendation {
	ans := req.Answers.WithDefaults()
	mode := s.ranking.Mode
	if m, ok := ParseMode(req.Mode); ok {
		mode = m
	}
	topK := s.ranking.TopK
	if req.TopK > 0 {
		topK = req.TopK
	}
	query := strings.TrimSpace(ans.Interest)
	semantic := query != "" && s.index.Enabled()

	var ranked []Scored
	switch mode {
	case ModeSemantic:
		var indices []int
		var sims []float64
		if semantic {
			indices, sims, semantic = s.index.Lookup(ctx, query, topK)
		}
		if !semantic {
			ranked = Rank(ScoreAll(s.catalog, ans), topK)
			break
		}
		ranked = make([]Scored, 0, len(indices))
		for i, idx := range indices {
			_, reasons := Score(s.catalog.At(idx), ans)
			if sims[i] > 0 {
				reasons = append(reasons, ReasonSimilar)
			}
			ranked = append(ranked, Scored{Index: idx, Score: sims[i], Reasons: reasons})
		}
	case ModeRules:
		semantic = false
		ranked = Rank(ScoreAll(s.catalog, ans), topK)
	default:
		mode = ModeHybrid
		scored := ScoreAll(s.catalog, ans)
		if semantic {
			var indices []int
			var sims []float64
			indices, sims, semantic = s.index.Lookup(ctx, query, s.ranking.CandidateK)
			if semantic {
				scored = Blend(scored, indices, sims, s.ranking.SemanticWeight)
			}
		}
		ranked = Rank(scored, topK)
	}

	metrics.Recommendations.WithLabelValues(string(mode)).Inc()
	if len(ranked) > 0 {
		metrics.TopScore.Observe(ranked[0].Score)
	}
	s.logger.Debug().
		Str("mode", string(mode)).
		Bool("semantic", semantic).
		Int("results", len(ranked)).
		Msg("recommendation computed")

	return Recommendation{
		Mode:     mode,
		Semantic: semantic,
		Results:  PresentAll(s.catalog, ranked),
	}
}

// Browse presents the whole catalog in catalog order with zero scores.
func (s *Service) Browse() []Result {
	out := make([]Result, len(s.catalog))
	for i, rec := range s.catalog {
		out[i] = Present(rec, 0, nil)
	}
	return out
}

// Search runs a raw nearest-neighbour query.
func (s *Service) Search(ctx context.Context, text string, k int) []SearchHit {
	indices, sims := s.index.Query(ctx, text, k)
	hits := make([]SearchHit, len(indices))
	for i, idx := range indices {
		hits[i] = SearchHit{
			Index:      idx,
			Name:       s.catalog.At(idx).TextOr(unknownName, "name"),
			Similarity: sims[i],
		}
	}
	return hits
}
