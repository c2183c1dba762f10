package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/cache"
	"github.com/jonathan/cv-importer/internal/db"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/jonathan/cv-importer/internal/ingestion"
	"github.com/jonathan/cv-importer/internal/linkedin"
	"github.com/jonathan/cv-importer/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type importLinkedinOptions struct {
	root        *rootOptions
	input       string
	userID      string
	apply       string
	databaseURL string
	source      string
}

func newImportLinkedinCmd(root *rootOptions) *cobra.Command {
	opts := &importLinkedinOptions{root: root}
	cmd := &cobra.Command{
		Use:   "import-linkedin",
		Short: "Store a LinkedIn profile as an import of a user, optionally applying it",
		Long: `Parse a saved LinkedIn profile and store it as a pending import of the user.
With --apply the listed parts (personal, experience, education, skills or all)
are merged into the user's CV right away.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImportLinkedin(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "in", "i", "", "Input file, .txt or .html")
	cmd.Flags().StringVar(&opts.userID, "user-id", "", "ID of the user that owns the import")
	cmd.Flags().StringVar(&opts.apply, "apply", "", "Parts to apply: personal,experience,education,skills or all")
	cmd.Flags().StringVar(&opts.databaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	cmd.Flags().StringVar(&opts.source, "source", "", "Source label stored with the import (default: input path)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runImportLinkedin(cmd *cobra.Command, opts *importLinkedinOptions) error {
	userID, err := uuid.Parse(opts.userID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}

	// validate the selection before touching the database
	var sel importer.Selection
	if opts.apply != "" {
		if sel, err = importer.ParseSelection(opts.apply); err != nil {
			return err
		}
	}

	cfg, err := opts.root.load()
	if err != nil {
		return err
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
	}

	logger, err := opts.root.logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	text, meta, err := ingestion.IngestFromFile(opts.input, cfg.MaxInputBytes)
	if err != nil {
		return err
	}
	if meta.Truncated {
		logger.Warn("input truncated", zap.String("path", opts.input), zap.Int("max_bytes", cfg.MaxInputBytes))
	}

	parser, err := linkedin.New(cfg.Locales...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	svc := importer.NewService(importer.Options{
		Store:         database,
		Cache:         cache.Nop{},
		Parser:        parser,
		Logger:        logger,
		MaxInputBytes: cfg.MaxInputBytes,
	})

	source := opts.source
	if source == "" {
		source = meta.Source
	}
	imp, err := svc.Create(ctx, userID, text, source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	if cfg.Verbose {
		printer.PrintParseResult(imp.Result)
	}
	_, _ = fmt.Fprintf(out, "Import %s stored (status %s)\n", imp.ID, imp.Status)

	if !sel.Any() {
		return nil
	}
	res, err := svc.Apply(ctx, userID, imp.ID, sel)
	if err != nil {
		return err
	}
	printer.PrintApplySummary(imp.ID.String(), res.Counts())
	return nil
}
