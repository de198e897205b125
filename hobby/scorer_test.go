package hobby

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreChessScenario(t *testing.T) {
	rec := Record{
		"name":        "Chess",
		"interests":   []any{"chess", "strategy"},
		"pref_indoor": 1.0,
		"cost_level":  1.0,
		"time_hours":  2.0,
	}
	ans := Answers{Interest: "chess", Environment: "indoor", Budget: "low", Time: "low"}

	score, reasons := Score(rec, ans)
	assert.Equal(t, 6.0, score)
	assert.Equal(t, []string{ReasonInterest, ReasonIndoor, ReasonBudget, ReasonLowTime}, reasons)
}

func TestScoreIsDeterministic(t *testing.T) {
	cat := testCatalog(t)
	ans := Answers{Interest: "art", Environment: "indoor", Creative: "yes", Social: "solo", Time: "high"}
	for _, rec := range cat {
		s1, r1 := Score(rec, ans)
		s2, r2 := Score(rec, ans)
		assert.Equal(t, s1, s2)
		assert.Equal(t, r1, r2)
	}
}

// isolated answers disable the default low-budget rule.
func isolated(a Answers) Answers {
	if a.Budget == "" {
		a.Budget = "medium"
	}
	return a
}

func TestScoreRules(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		ans     Answers
		want    float64
		reasons []string
	}{
		{
			name:    "interest is case and trim insensitive",
			rec:     Record{"interests": []any{"chess"}},
			ans:     isolated(Answers{Interest: "Chess "}),
			want:    3.0,
			reasons: []string{ReasonInterest},
		},
		{
			name:    "interest tag case folded",
			rec:     Record{"interests": []any{"  STRATEGY"}},
			ans:     isolated(Answers{Interest: "strategy"}),
			want:    3.0,
			reasons: []string{ReasonInterest},
		},
		{
			name:    "interest on non list is no match",
			rec:     Record{"interests": "chess"},
			ans:     isolated(Answers{Interest: "chess"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "empty interest never matches",
			rec:     Record{"interests": []any{""}},
			ans:     isolated(Answers{Interest: "   "}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "indoor adds pref_indoor",
			rec:     Record{"pref_indoor": 1.5},
			ans:     isolated(Answers{Environment: "indoor"}),
			want:    1.5,
			reasons: []string{ReasonIndoor},
		},
		{
			name:    "outdoor adds magnitude",
			rec:     Record{"pref_indoor": -2.0},
			ans:     isolated(Answers{Environment: "outdoor"}),
			want:    2.0,
			reasons: []string{ReasonOutdoor},
		},
		{
			name:    "indoor answer on outdoor hobby adds nothing",
			rec:     Record{"pref_indoor": -2.0},
			ans:     isolated(Answers{Environment: "indoor"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "both environments add nothing",
			rec:     Record{"pref_indoor": 3.0},
			ans:     isolated(Answers{Environment: "both"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "padded environment still matches",
			rec:     Record{"pref_indoor": 1.0},
			ans:     isolated(Answers{Environment: " indoor "}),
			want:    1.0,
			reasons: []string{ReasonIndoor},
		},
		{
			name:    "uppercase environment is outside the enum",
			rec:     Record{"pref_indoor": 1.0},
			ans:     isolated(Answers{Environment: "INDOOR"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "uppercase budget is outside the enum",
			rec:     Record{"cost_level": 1.0},
			ans:     Answers{Budget: "LOW"},
			want:    0,
			reasons: []string{},
		},
		{
			name:    "non numeric pref_indoor treated as zero",
			rec:     Record{"pref_indoor": "very"},
			ans:     isolated(Answers{Environment: "indoor"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "numeric string pref_indoor coerced",
			rec:     Record{"pref_indoor": "2"},
			ans:     isolated(Answers{Environment: "indoor"}),
			want:    2.0,
			reasons: []string{ReasonIndoor},
		},
		{
			name:    "creative",
			rec:     Record{"creative": 1.0},
			ans:     isolated(Answers{Creative: "yes"}),
			want:    1.0,
			reasons: []string{ReasonCreative},
		},
		{
			name:    "creative no",
			rec:     Record{"creative": 1.0},
			ans:     isolated(Answers{Creative: "no"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "solo on neutral social",
			rec:     Record{"social": 0.0},
			ans:     isolated(Answers{Social: "solo"}),
			want:    0.5,
			reasons: []string{ReasonSolo},
		},
		{
			name:    "group on neutral social",
			rec:     Record{"social": 0.0},
			ans:     isolated(Answers{Social: "group"}),
			want:    0.5,
			reasons: []string{ReasonGroup},
		},
		{
			name:    "group on solo hobby",
			rec:     Record{"social": 1.0},
			ans:     isolated(Answers{Social: "group"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "either adds nothing",
			rec:     Record{"social": 0.0},
			ans:     isolated(Answers{Social: "either"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "low time within limit",
			rec:     Record{"time_per_week_hours": 3.0},
			ans:     isolated(Answers{Time: "low"}),
			want:    1.0,
			reasons: []string{ReasonLowTime},
		},
		{
			name:    "low time missing hours counts as zero",
			rec:     Record{},
			ans:     isolated(Answers{Time: "low"}),
			want:    1.0,
			reasons: []string{ReasonLowTime},
		},
		{
			name:    "low time over limit",
			rec:     Record{"time_hours": 5.0},
			ans:     isolated(Answers{Time: "low"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "high time uses time_commit",
			rec:     Record{"time_commit": 5.0, "time_hours": 10.0},
			ans:     isolated(Answers{Time: "high"}),
			want:    1.0,
			reasons: []string{},
		},
		{
			name:    "high time falls back to time_hours",
			rec:     Record{"time_hours": 10.0},
			ans:     isolated(Answers{Time: "high"}),
			want:    2.0,
			reasons: []string{},
		},
		{
			name:    "medium time adds nothing",
			rec:     Record{"time_hours": 1.0},
			ans:     isolated(Answers{Time: "medium"}),
			want:    0,
			reasons: []string{},
		},
		{
			name:    "unknown enum values match nothing",
			rec:     Record{"pref_indoor": 1.0, "creative": 1.0, "social": 0.0, "time_hours": 1.0},
			ans:     Answers{Environment: "sideways", Creative: "maybe", Social: "crowd", Budget: "lavish", Time: "forever"},
			want:    0,
			reasons: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := Score(tt.rec, tt.ans)
			assert.InDelta(t, tt.want, score, 1e-9)
			assert.Equal(t, tt.reasons, reasons)
		})
	}
}

func TestScoreBudget(t *testing.T) {
	ans := Answers{Budget: "low"}

	prev := 0.0
	for i, cost := range []float64{5, 4, 3, 2, 1} {
		score, reasons := Score(Record{"cost_level": cost}, ans)
		assert.Greater(t, score, 0.0)
		assert.Contains(t, reasons, ReasonBudget)
		if i > 0 {
			assert.Greater(t, score, prev, "cheaper hobbies must score higher")
		}
		prev = score
	}

	t.Run("cost floored at one", func(t *testing.T) {
		for _, rec := range []Record{{"cost_level": 0.2}, {}, {"cost_level": "free"}} {
			score, _ := Score(rec, ans)
			assert.Equal(t, 1.0, score)
		}
	})

	t.Run("reason kept for expensive hobbies", func(t *testing.T) {
		score, reasons := Score(Record{"cost_level": 1000.0}, ans)
		assert.InDelta(t, 0.001, score, 1e-12)
		assert.Equal(t, []string{ReasonBudget}, reasons)
	})

	t.Run("default answers budget is low", func(t *testing.T) {
		_, reasons := Score(Record{"cost_level": 2.0}, Answers{})
		assert.Equal(t, []string{ReasonBudget}, reasons)
	})
}

func TestAnswersWithDefaults(t *testing.T) {
	got := Answers{Interest: "chess", Social: "group"}.WithDefaults()
	assert.Equal(t, Answers{
		Interest:    "chess",
		Environment: EnvironmentBoth,
		Physical:    LevelLow,
		Creative:    CreativeNo,
		Social:      SocialGroup,
		Budget:      LevelLow,
		Time:        LevelMedium,
	}, got)
}

func TestScoreIgnoresNonFiniteNumbers(t *testing.T) {
	rec := Record{
		"name":        "Chess",
		"interests":   []any{"chess"},
		"pref_indoor": "Inf",
		"cost_level":  "NaN",
		"time_hours":  "nan",
	}
	ans := Answers{Interest: "chess", Environment: "indoor", Budget: "low", Time: "low"}

	score, reasons := Score(rec, ans)
	assert.False(t, math.IsNaN(score))
	assert.Equal(t, 5.0, score)
	assert.Equal(t, []string{ReasonInterest, ReasonBudget, ReasonLowTime}, reasons)
}
