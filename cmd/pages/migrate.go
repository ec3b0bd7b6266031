package main

import (
	"fmt"

	"github.com/deppfellow/pages-api/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(cmd.Context(), a.log, a.cfg); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			return nil
		},
	}
}
