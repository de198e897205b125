package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yashubustudio/hobbyfinder/hobby"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		req    hobby.RecommendRequest
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "recommend [interest...]",
		Short: "Rank hobbies for one set of quiz answers",
		Example: `  hobbyfinder recommend board games --environment indoor --social solo
  hobbyfinder recommend --interest chess --format json --top-k 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && req.Interest == "" {
				req.Interest = strings.Join(args, " ")
			}
			svc := a.newService(cmd.Context())
			defer svc.Close()

			rec := svc.Recommend(cmd.Context(), req)
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(out, rec)
			case "csv":
				if output == "" {
					return writeResultsCSV(out, rec.Results)
				}
				path, err := writeResultsCSVFile(output, rec.Results)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %d results to %s\n", len(rec.Results), path)
				return nil
			case "text", "":
				printRecommendation(out, rec)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or csv)", format)
			}
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Interest, "interest", "", "free-text interest")
	f.StringVar(&req.Environment, "environment", "", "indoor, outdoor or both")
	f.StringVar(&req.Physical, "physical", "", "low, medium or high")
	f.StringVar(&req.Creative, "creative", "", "yes or no")
	f.StringVar(&req.Social, "social", "", "solo, group or either")
	f.StringVar(&req.Budget, "budget", "", "low, medium or high")
	f.StringVar(&req.Time, "time", "", "low, medium or high")
	f.IntVarP(&req.TopK, "top-k", "k", 0, "number of results (default ranking.top_k)")
	f.StringVar(&req.Mode, "mode", "", "hybrid, rules or semantic (default ranking.mode)")
	f.StringVarP(&format, "format", "f", "text", "output format: text, json or csv")
	f.StringVarP(&output, "output", "o", "", "with --format csv, write to this file instead of stdout")
	return cmd
}
