// Package main provides the cv_importer CLI: parse pasted LinkedIn profiles,
// store and apply imports, and serve the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/cv-importer/internal/config"
	"github.com/jonathan/cv-importer/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cv_importer",
		Short:         "LinkedIn profile importer",
		Long:          "cv_importer turns text copied from a LinkedIn profile page into structured CV data and merges it into a stored CV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to JSON config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	cmd.AddCommand(
		newParseLinkedinCmd(opts),
		newImportLinkedinCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newValidateResultCmd(opts),
	)
	return cmd
}

// load resolves the effective configuration: defaults, then the config file, then
// environment variables.
func (o *rootOptions) load() (*config.Config, error) {
	cfg := &config.Config{}
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(config.Default())
	if o.verbose {
		merged.Verbose = true
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (o *rootOptions) logger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Verbose)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
