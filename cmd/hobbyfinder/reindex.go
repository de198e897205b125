package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"yashubustudio/hobbyfinder/hobby"
)

func newReindexCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Delete the embedding cache and rebuild it from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cat, err := hobby.LoadCatalog(a.cfg.Data.HobbiesPath)
			if err != nil {
				return err
			}
			store := a.cacheStore()
			if err := store.Remove(); err != nil {
				return fmt.Errorf("remove cache: %w", err)
			}

			idx := a.newIndex()
			defer idx.Close()
			status := idx.Rebuild(ctx, cat)

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), status); err != nil {
					return err
				}
			} else {
				printIndexStatus(cmd.OutOrStdout(), status, store)
			}
			if !status.Enabled {
				return errors.New("index could not be built; see log for the cause")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the index status as JSON")
	return cmd
}
