package hobby

import "sort"

// ReasonSimilar is attached to hobbies found by the semantic search.
const ReasonSimilar = "Similar to what you described"

// Scored is one catalog position with its combined score.
type Scored struct {
	Index   int
	Score   float64
	Reasons []string
}

// ScoreAll rule-scores every record in catalog order.
func ScoreAll(cat Catalog, ans Answers) []Scored {
	out := make([]Scored, len(cat))
	for i, rec := range cat {
		score, reasons := Score(rec, ans)
		out[i] = Scored{Index: i, Score: score, Reasons: reasons}
	}
	return out
}

// Blend adds weight times the similarity of each semantic hit to the matching
// rule scores. Non-positive similarities add nothing.
func Blend(scored []Scored, indices []int, sims []float64, weight float64) []Scored {
	pos := make(map[int]int, len(scored))
	for i, s := range scored {
		pos[s.Index] = i
	}
	for i, idx := range indices {
		if i >= len(sims) || sims[i] <= 0 {
			continue
		}
		p, ok := pos[idx]
		if !ok {
			continue
		}
		scored[p].Score += weight * sims[i]
		scored[p].Reasons = append(scored[p].Reasons, ReasonSimilar)
	}
	return scored
}

// Rank orders by descending score and keeps at most k entries. Ties keep their
// input order.
func Rank(scored []Scored, k int) []Scored {
	out := append([]Scored(nil), scored...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// PresentAll converts ranked entries to results.
func PresentAll(cat Catalog, scored []Scored) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		out = append(out, Present(cat.At(s.Index), s.Score, s.Reasons))
	}
	return out
}
