package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cv-importer/internal/config"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/jonathan/cv-importer/internal/ingestion"
	"github.com/jonathan/cv-importer/internal/linkedin"
	"github.com/jonathan/cv-importer/internal/observability"
	"github.com/jonathan/cv-importer/internal/schemas"
	"github.com/spf13/cobra"
)

type parseLinkedinOptions struct {
	root        *rootOptions
	inputs      []string
	out         string
	cleanedDir  string
	validate    bool
	concurrency int
	locales     string
}

func newParseLinkedinCmd(root *rootOptions) *cobra.Command {
	opts := &parseLinkedinOptions{root: root}
	cmd := &cobra.Command{
		Use:   "parse-linkedin",
		Short: "Parse saved LinkedIn profile text into structured JSON",
		Long: `Parse one or more saved LinkedIn profiles (.txt copies or saved .html pages) into
ParseResult JSON. With one input and no --out the JSON goes to stdout; with several
inputs --out must be a directory and one <name>.linkedin.json is written per input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParseLinkedin(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.inputs, "in", "i", nil, "Input file(s), .txt or .html (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output JSON file, or directory for several inputs")
	cmd.Flags().StringVar(&opts.cleanedDir, "cleaned-dir", "", "Also write cleaned text and metadata to this directory")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "Validate output against the ParseResult schema")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Files parsed in parallel (default from config)")
	cmd.Flags().StringVar(&opts.locales, "locale", "", "Comma separated locales, e.g. en,pl (default from config)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runParseLinkedin(cmd *cobra.Command, opts *parseLinkedinOptions) error {
	cfg, err := opts.root.load()
	if err != nil {
		return err
	}
	if opts.locales != "" {
		cfg.Locales = config.SplitList(opts.locales)
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	if len(opts.inputs) > 1 && opts.out != "" && !isDirTarget(opts.out) {
		return fmt.Errorf("--out must be a directory (existing, or ending in /) when parsing %d files", len(opts.inputs))
	}

	logger, err := opts.root.logger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	parser, err := linkedin.New(cfg.Locales...)
	if err != nil {
		return err
	}
	svc := importer.NewService(importer.Options{
		Parser:        parser,
		Logger:        logger,
		MaxInputBytes: cfg.MaxInputBytes,
	})

	results, err := svc.ParseFiles(cmd.Context(), opts.inputs, cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	for _, fr := range results {
		if opts.validate {
			if err := schemas.ValidateParseResult(fr.Result); err != nil {
				var validationErr *schemas.ValidationError
				if errors.As(err, &validationErr) {
					return fmt.Errorf("%s: output does not validate against schema: %w", fr.Path, err)
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not validate %s: %v\n", fr.Path, err)
			}
		}
		if cfg.Verbose {
			printer.PrintParseResult(fr.Result)
			printer.PrintFieldOutcomes(fr.Result)
		}
		if opts.cleanedDir != "" {
			if err := writeCleaned(opts.cleanedDir, fr, cfg.MaxInputBytes); err != nil {
				return err
			}
		}
	}

	return writeResults(cmd.OutOrStdout(), opts.out, results)
}

// writeResults prints a single result to w, or writes files under out
func writeResults(w io.Writer, out string, results []importer.FileResult) error {
	if out == "" {
		var v any = results
		if len(results) == 1 {
			v = results[0].Result
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	if !isDirTarget(out) {
		return writeJSONFile(out, results[0].Result)
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, fr := range results {
		path := filepath.Join(out, baseName(fr.Path)+".linkedin.json")
		if err := writeJSONFile(path, fr.Result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s -> %s\n", fr.Path, path)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// writeCleaned re-ingests the file so the cleaned text can be kept for review
func writeCleaned(dir string, fr importer.FileResult, maxBytes int) error {
	text, meta, err := ingestion.IngestFromFile(fr.Path, maxBytes)
	if err != nil {
		return err
	}
	return ingestion.WriteOutput(dir, baseName(fr.Path), text, meta)
}

func isDirTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
