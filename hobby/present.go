package hobby

import "math"

const (
	unknownName  = "Unknown Hobby"
	unknownLabel = "Unknown"
)

// Present builds the display form of rec. It does no ranking of its own.
func Present(rec Record, score float64, reasons []string) Result {
	weekly, _ := rec.WeeklyHours()
	steps := rec.Items("how_to_start")
	if steps == nil {
		steps = []any{}
	}
	if reasons == nil {
		reasons = []string{}
	}
	return Result{
		Name:        rec.TextOr(unknownName, "name"),
		Short:       rec.TextOr("", "short"),
		CostLevel:   rec.TextOr(unknownLabel, costLabelKeys...),
		Difficulty:  rec.TextOr(unknownLabel, difficultyKeys...),
		TimePerWeek: weekly,
		HowToStart:  steps,
		WhyFit:      reasons,
		MatchScore:  roundScore(score),
	}
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
