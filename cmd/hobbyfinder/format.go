package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"yashubustudio/hobbyfinder/hobby"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func printRecommendation(w io.Writer, rec hobby.Recommendation) {
	how := "rule scores only"
	if rec.Semantic {
		how = "rules + semantic similarity"
	}
	fmt.Fprintf(w, "mode %s (%s)\n", rec.Mode, how)
	if len(rec.Results) == 0 {
		fmt.Fprintln(w, "no hobbies to recommend")
		return
	}
	for i, r := range rec.Results {
		fmt.Fprintf(w, "%d. %s (score=%.2f)\n", i+1, r.Name, r.MatchScore)
		if r.Short != "" {
			fmt.Fprintf(w, "    %s\n", summarize(r.Short, 72))
		}
		fmt.Fprintf(w, "    cost: %s  difficulty: %s  hours/week: %s\n",
			r.CostLevel, r.Difficulty, formatHours(r.TimePerWeek))
		if len(r.WhyFit) > 0 {
			fmt.Fprintf(w, "    why: %s\n", strings.Join(r.WhyFit, "; "))
		}
		printSteps(w, r.HowToStart)
	}
}

func printSteps(w io.Writer, steps []any) {
	limit := 3
	if len(steps) < limit {
		limit = len(steps)
	}
	for i := 0; i < limit; i++ {
		fmt.Fprintf(w, "      - %v\n", steps[i])
	}
}

func joinSteps(steps []any) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, "; ")
}

func printSearchHits(w io.Writer, hits []hobby.SearchHit, semantic bool) {
	if !semantic {
		fmt.Fprintln(w, "semantic search unavailable, showing catalog order")
	}
	if len(hits) == 0 {
		fmt.Fprintln(w, "no hits")
		return
	}
	for i, h := range hits {
		fmt.Fprintf(w, "%d. [%d] %s (similarity=%.3f)\n", i+1, h.Index, h.Name, h.Similarity)
	}
}

func printIndexStatus(w io.Writer, status hobby.IndexStatus, store *hobby.CacheStore) {
	if !status.Enabled {
		fmt.Fprintln(w, "index disabled")
		return
	}
	fmt.Fprintf(w, "indexed %d hobbies (dim=%d, model=%s)\n", status.Rows, status.Dim, status.ModelID)
	fmt.Fprintf(w, "  matrix:    %s\n", store.MatrixPath)
	fmt.Fprintf(w, "  documents: %s\n", store.DocumentsPath)
}

var csvHeader = []string{"rank", "name", "match_score", "cost_level", "difficulty", "time_per_week_hours", "why_fit", "how_to_start"}

func writeResultsCSV(w io.Writer, results []hobby.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			r.Name,
			strconv.FormatFloat(r.MatchScore, 'f', 2, 64),
			r.CostLevel,
			r.Difficulty,
			formatHours(r.TimePerWeek),
			strings.Join(r.WhyFit, "; "),
			joinSteps(r.HowToStart),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeResultsCSVFile(path string, results []hobby.Result) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()
	if err := writeResultsCSV(f, results); err != nil {
		return "", err
	}
	return absPath, nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func summarize(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return text
}
