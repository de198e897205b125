package hobby

import (
	"math"
	"strings"
)

// Reasons attached by Score.
const (
	ReasonInterest = "Matches your interest"
	ReasonIndoor   = "Good for indoor preference"
	ReasonOutdoor  = "Good for outdoor preference"
	ReasonCreative = "Suits creative preference"
	ReasonSolo     = "Solo-friendly"
	ReasonGroup    = "Group-friendly"
	ReasonBudget   = "Fits low budget"
	ReasonLowTime  = "Low weekly time needed"
)

const (
	interestWeight  = 3.0
	creativeWeight  = 1.0
	socialWeight    = 0.5
	lowTimeWeight   = 1.0
	highTimeFactor  = 0.2
	lowTimeMaxHours = 3.0
	minCostLevel    = 1.0
)

// Score evaluates rec against ans. Every rule only adds to the score, and the
// reasons come back in rule order. Score is pure and safe for concurrent use.
func Score(rec Record, ans Answers) (float64, []string) {
	ans = ans.WithDefaults()
	score := 0.0
	reasons := []string{}

	if matchesInterest(rec, ans.Interest) {
		score += interestWeight
		reasons = append(reasons, ReasonInterest)
	}

	prefIndoor := rec.NumberOr(0, "pref_indoor")
	switch env := answerKey(ans.Environment); {
	case env == EnvironmentIndoor && prefIndoor > 0:
		score += prefIndoor
		reasons = append(reasons, ReasonIndoor)
	case env == EnvironmentOutdoor && prefIndoor < 0:
		score += math.Abs(prefIndoor)
		reasons = append(reasons, ReasonOutdoor)
	}

	if answerKey(ans.Creative) == CreativeYes && rec.NumberOr(0, "creative") > 0 {
		score += creativeWeight
		reasons = append(reasons, ReasonCreative)
	}

	// Positive social values favour solo hobbies, negative ones group hobbies.
	social := rec.NumberOr(0, "social")
	switch s := answerKey(ans.Social); {
	case s == SocialSolo && social >= 0:
		score += socialWeight
		reasons = append(reasons, ReasonSolo)
	case s == SocialGroup && social <= 0:
		score += socialWeight
		reasons = append(reasons, ReasonGroup)
	}

	cost := math.Max(rec.NumberOr(0, "cost_level"), minCostLevel)
	if answerKey(ans.Budget) == LevelLow {
		// The reason is kept even when an expensive hobby earns almost nothing here.
		score += 1.0 / cost
		reasons = append(reasons, ReasonBudget)
	}

	switch answerKey(ans.Time) {
	case LevelLow:
		weekly, _ := rec.WeeklyHours()
		if weekly <= lowTimeMaxHours {
			score += lowTimeWeight
			reasons = append(reasons, ReasonLowTime)
		}
	case LevelHigh:
		commit, _ := rec.TimeCommit()
		score += highTimeFactor * commit
	}

	return score, reasons
}

// answerKey trims an answer value. Enum values compare exactly, so "INDOOR"
// matches no branch.
func answerKey(s string) string {
	return strings.TrimSpace(s)
}

// matchesInterest compares the folded interest text to each tag.
func matchesInterest(rec Record, interest string) bool {
	want := normalizeKey(interest)
	if want == "" {
		return false
	}
	for _, tag := range rec.Interests() {
		if normalizeKey(tag) == want {
			return true
		}
	}
	return false
}
