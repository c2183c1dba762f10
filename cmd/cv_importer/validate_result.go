package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-importer/internal/schemas"
	"github.com/spf13/cobra"
)

func newValidateResultCmd(_ *rootOptions) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "validate-result <file.json>...",
		Short: "Validate ParseResult JSON files",
		Long: `Validate one or more ParseResult JSON files, such as the output of parse-linkedin.
The embedded ParseResult schema is used unless --schema names another schema file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath != "" {
				resolved := schemas.ResolveSchemaPath(schemaPath)
				if resolved == "" {
					return fmt.Errorf("schema file not found: %s", schemaPath)
				}
				schemaPath = resolved
			}

			failed := 0
			for _, path := range args {
				if err := validateResultFile(schemaPath, path); err != nil {
					failed++
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file to validate against")
	return cmd
}

func validateResultFile(schemaPath, path string) error {
	if schemaPath != "" {
		return schemas.ValidateJSON(schemaPath, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return schemas.ValidateParseResultJSON(data)
}
