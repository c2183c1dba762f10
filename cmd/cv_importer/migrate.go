package main

import (
	"fmt"

	"github.com/jonathan/cv-importer/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
			}

			database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := database.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			for _, name := range applied {
				_, _ = fmt.Fprintf(out, "Applied %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	return cmd
}
