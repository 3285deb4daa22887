package main

import (
	"fmt"

	"github.com/ivanoskov/civic_bot/internal/app"
	"github.com/ivanoskov/civic_bot/internal/repository"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample property tax records into an empty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo, err := app.OpenRepository(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repository.Seed(cmd.Context(), repo)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Property tax table already populated, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d property tax records\n", n)
			return nil
		},
	}
}
