package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		k      int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <text...>",
		Short: "Query the embedding index directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("search text is empty")
			}
			svc := a.newService(cmd.Context())
			defer svc.Close()

			hits := svc.Search(cmd.Context(), query, k)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), hits)
			}
			printSearchHits(cmd.OutOrStdout(), hits, svc.Index().Enabled())
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", 5, "number of neighbours")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print hits as JSON")
	return cmd
}
