package hobby

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one catalog entry as decoded from JSON. Fields are read through the
// accessors below so a missing or malformed field never fails a caller.
type Record map[string]any

// Field precedence for values that can live under more than one key.
var (
	weeklyHoursKeys = []string{"time_hours", "time_per_week_hours"}
	timeCommitKeys  = []string{"time_commit", "time_hours"}
	costLabelKeys   = []string{"cost_label", "cost_level_label"}
	difficultyKeys  = []string{"difficulty", "difficulty_label"}
)

// Number returns the first value among keys that coerces to a number.
func (r Record) Number(keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := coerceNumber(r[k]); ok {
			return v, true
		}
	}
	return 0, false
}

// NumberOr is Number with an explicit default.
func (r Record) NumberOr(def float64, keys ...string) float64 {
	if v, ok := r.Number(keys...); ok {
		return v
	}
	return def
}

// Text returns the first value among keys with a non-empty string form.
func (r Record) Text(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := stringify(r[k]); ok {
			return s, true
		}
	}
	return "", false
}

// TextOr is Text with an explicit default.
func (r Record) TextOr(def string, keys ...string) string {
	if s, ok := r.Text(keys...); ok {
		return s
	}
	return def
}

// List returns the stringified, non-empty elements of a list field.
// Values that are not lists yield nil.
func (r Record) List(key string) []string {
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := stringify(it); ok {
			out = append(out, s)
		}
	}
	return out
}

// Items returns a copy of a list field with its elements unchanged. Values
// that are not lists yield nil.
func (r Record) Items(key string) []any {
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	return append([]any(nil), items...)
}

// Name is the display name of the hobby.
func (r Record) Name() string { return r.TextOr("", "name") }

// Interests returns the interest tags.
func (r Record) Interests() []string { return r.List("interests") }

// WeeklyHours reads time_hours, falling back to time_per_week_hours.
func (r Record) WeeklyHours() (float64, bool) { return r.Number(weeklyHoursKeys...) }

// TimeCommit reads time_commit, falling back to time_hours.
func (r Record) TimeCommit() (float64, bool) { return r.Number(timeCommitKeys...) }

// CostLabel reads cost_label, falling back to cost_level_label.
func (r Record) CostLabel() (string, bool) { return r.Text(costLabelKeys...) }

// DifficultyLabel reads difficulty, falling back to difficulty_label.
func (r Record) DifficultyLabel() (string, bool) { return r.Text(difficultyKeys...) }

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// finite rejects NaN and infinities, which ParseFloat accepts as text.
func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringify converts a JSON value to text. Empty strings, zero numbers, false,
// nil and empty collections report false.
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, s != ""
	case float64:
		if s == 0 {
			return "", false
		}
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		if !s {
			return "", false
		}
		return "True", true
	case []any:
		if len(s) == 0 {
			return "", false
		}
	case map[string]any:
		if len(s) == 0 {
			return "", false
		}
	}
	if n, ok := coerceNumber(v); ok {
		if n == 0 {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(buf), true
}
