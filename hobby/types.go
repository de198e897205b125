package hobby

import "strings"

// Answer values the rule scorer branches on. Other values are accepted and
// simply match no rule.
const (
	EnvironmentIndoor  = "indoor"
	EnvironmentOutdoor = "outdoor"
	EnvironmentBoth    = "both"

	CreativeYes = "yes"
	CreativeNo  = "no"

	SocialSolo   = "solo"
	SocialGroup  = "group"
	SocialEither = "either"

	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Answers is one completed quiz.
type Answers struct {
	Interest    string `json:"interest" validate:"max=500"`
	Environment string `json:"environment"`
	Physical    string `json:"physical"`
	Creative    string `json:"creative"`
	Social      string `json:"social"`
	Budget      string `json:"budget"`
	Time        string `json:"time"`
}

// WithDefaults returns a copy where every empty field takes its default.
func (a Answers) WithDefaults() Answers {
	a.Environment = orDefault(a.Environment, EnvironmentBoth)
	a.Physical = orDefault(a.Physical, LevelLow)
	a.Creative = orDefault(a.Creative, CreativeNo)
	a.Social = orDefault(a.Social, SocialEither)
	a.Budget = orDefault(a.Budget, LevelLow)
	a.Time = orDefault(a.Time, LevelMedium)
	return a
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Result is the presentation form of one recommended hobby.
type Result struct {
	Name        string   `json:"name"`
	Short       string   `json:"short"`
	CostLevel   string   `json:"cost_level"`
	Difficulty  string   `json:"difficulty"`
	TimePerWeek float64  `json:"time_per_week_hours"`
	HowToStart  []any    `json:"how_to_start"`
	WhyFit      []string `json:"why_fit"`
	MatchScore  float64  `json:"match_score"`
}

// Mode selects how rule scores and embedding similarity are combined.
type Mode string

const (
	// ModeHybrid adds weighted similarity to rule scores for semantic candidates.
	ModeHybrid Mode = "hybrid"
	// ModeRules ranks the whole catalog by rule score only.
	ModeRules Mode = "rules"
	// ModeSemantic ranks by embedding similarity to the interest text.
	ModeSemantic Mode = "semantic"
)

// ParseMode maps a user supplied mode to a known Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeHybrid:
		return ModeHybrid, true
	case ModeRules:
		return ModeRules, true
	case ModeSemantic:
		return ModeSemantic, true
	}
	return "", false
}

// RankingConfig tunes Service.Recommend.
type RankingConfig struct {
	Mode           Mode    `json:"mode" koanf:"mode" validate:"omitempty,oneof=hybrid rules semantic"`
	TopK           int     `json:"top_k" koanf:"top_k" validate:"gte=0"`
	CandidateK     int     `json:"candidate_k" koanf:"candidate_k" validate:"gte=0"`
	SemanticWeight float64 `json:"semantic_weight" koanf:"semantic_weight" validate:"gte=0"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *RankingConfig) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHybrid
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.CandidateK <= 0 {
		c.CandidateK = 10
	}
	if c.SemanticWeight == 0 {
		c.SemanticWeight = 2.0
	}
}

// Embedding providers understood by NewModelFactory.
const (
	ProviderORT  = "ort"
	ProviderHash = "hash"
)

// EmbedderConfig selects and configures the embedding model.
type EmbedderConfig struct {
	Provider      string `json:"provider" koanf:"provider" validate:"omitempty,oneof=ort hash"`
	ModelID       string `json:"model_id" koanf:"model_id"`
	OrtLibrary    string `json:"ort_library" koanf:"ort_library"`
	ModelPath     string `json:"model_path" koanf:"model_path"`
	TokenizerPath string `json:"tokenizer_path" koanf:"tokenizer_path"`
	MaxSeqLen     int    `json:"max_seq_len" koanf:"max_seq_len" validate:"gte=0"`
	HashDim       int    `json:"hash_dim" koanf:"hash_dim" validate:"gte=0"`
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *EmbedderConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderORT
	}
	if c.ModelID == "" {
		c.ModelID = "all-MiniLM-L6-v2"
	}
	if c.MaxSeqLen <= 0 {
		c.MaxSeqLen = 256
	}
	if c.HashDim <= 0 {
		c.HashDim = 384
	}
}
