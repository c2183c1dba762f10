package importer

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-importer/internal/ingestion"
	"github.com/jonathan/cv-importer/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileResult is the parse of one input file
type FileResult struct {
	Path     string              `json:"path"`
	Result   *types.ParseResult  `json:"result"`
	Metadata *ingestion.Metadata `json:"metadata"`
}

// ParseFiles ingests and parses files concurrently. Results are in input order.
// The first failing file cancels the rest.
func (s *Service) ParseFiles(ctx context.Context, paths []string, concurrency int) ([]FileResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, meta, err := ingestion.IngestFromFile(path, s.maxBytes)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if meta.Truncated {
				s.logger.Warn("input truncated", zap.String("path", path), zap.Int("max_bytes", s.maxBytes))
			}
			results[i] = FileResult{Path: path, Result: s.parser.Parse(text), Metadata: meta}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
