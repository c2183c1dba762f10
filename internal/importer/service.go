// Package importer turns pasted LinkedIn text into reviewable imports and merges
// them into a user's stored CV.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-importer/internal/cache"
	"github.com/jonathan/cv-importer/internal/db"
	"github.com/jonathan/cv-importer/internal/ingestion"
	"github.com/jonathan/cv-importer/internal/linkedin"
	"github.com/jonathan/cv-importer/internal/observability"
	"github.com/jonathan/cv-importer/internal/types"
	"go.uber.org/zap"
)

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	CreateImport(ctx context.Context, input *db.CreateImportInput) (*db.Import, error)
	GetImport(ctx context.Context, id uuid.UUID) (*db.Import, error)
	ListImportsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]db.ImportSummary, error)
	DeleteImport(ctx context.Context, id uuid.UUID) error
	ApplyImport(ctx context.Context, input *db.ApplyImportInput) (*db.ApplyResult, error)
	GetCV(ctx context.Context, userID uuid.UUID) (*db.CV, error)
}

var _ Store = (*db.DB)(nil)

// Options configures a Service. Only Store is needed for import operations;
// Preview works without it.
type Options struct {
	Store         Store
	Cache         cache.Cache
	Parser        *linkedin.Parser
	Logger        *zap.Logger
	MaxInputBytes int
	CacheTTL      time.Duration
}

// Service coordinates parsing, caching and storage of LinkedIn imports
type Service struct {
	store    Store
	cache    cache.Cache
	parser   *linkedin.Parser
	logger   *zap.Logger
	maxBytes int
	ttl      time.Duration
}

// NewService creates a Service, filling unset options with defaults.
func NewService(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		cache:    opts.Cache,
		parser:   opts.Parser,
		logger:   opts.Logger,
		maxBytes: opts.MaxInputBytes,
		ttl:      opts.CacheTTL,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.parser == nil {
		s.parser = linkedin.MustNew()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxBytes <= 0 {
		s.maxBytes = ingestion.DefaultMaxBytes
	}
	if s.ttl <= 0 {
		s.ttl = cache.DefaultTTL
	}
	return s
}

// Preview is a parse that has not been stored
type Preview struct {
	Result    *types.ParseResult `json:"result"`
	Hash      string             `json:"hash"`
	Truncated bool               `json:"truncated"`
	Cached    bool               `json:"cached"`
}

// Preview cleans, bounds and parses text. Results are cached by content hash;
// cache failures are logged and otherwise ignored.
func (s *Service) Preview(ctx context.Context, text string) (*Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, truncated := ingestion.Bound(ingestion.CleanProfileText(text), s.maxBytes)
	hash := ingestion.ContentHash(cleaned)
	key := cache.ParseResultKey(s.parser.Locales(), hash)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		result := types.NewParseResult()
		if err := json.Unmarshal(raw, result); err == nil {
			s.logger.Debug("parse cache hit", zap.String("hash", hash))
			return &Preview{Result: result, Hash: hash, Truncated: truncated, Cached: true}, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("parse cache lookup failed", zap.Error(err))
	}

	start := time.Now()
	result := s.parser.Parse(cleaned)
	s.logger.Debug("parsed profile text",
		append(observability.ParseResultFields(len(result.Experience), len(result.Education),
			len(result.Skills), result.Found(types.FieldFullName)),
			zap.Int("bytes", len(cleaned)),
			zap.Bool("truncated", truncated),
			zap.Duration("took", time.Since(start)))...)

	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("parse cache store failed", zap.Error(err))
		}
	}

	return &Preview{Result: result, Hash: hash, Truncated: truncated}, nil
}

// Create parses text and stores it as a pending import of the user.
// A parse that found nothing is rejected with ErrEmptyParse.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, text, source string) (*db.Import, error) {
	preview, err := s.Preview(ctx, text)
	if err != nil {
		return nil, err
	}
	if preview.Result.IsEmpty() {
		return nil, &ErrEmptyParse{}
	}

	imp, err := s.store.CreateImport(ctx, &db.CreateImportInput{
		UserID:      userID,
		Source:      source,
		ContentHash: preview.Hash,
		Result:      preview.Result,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store import: %w", err)
	}

	s.logger.Info("import created",
		zap.String("import_id", imp.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("source", source))
	return imp, nil
}

// Get returns an import owned by the user.
func (s *Service) Get(ctx context.Context, userID, importID uuid.UUID) (*db.Import, error) {
	imp, err := s.store.GetImport(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import: %w", err)
	}
	if imp == nil || imp.UserID != userID {
		return nil, &ErrImportNotFound{ImportID: importID}
	}
	return imp, nil
}

// List returns the user's imports, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]db.ImportSummary, error) {
	imports, err := s.store.ListImportsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return imports, nil
}

// Delete removes an import owned by the user.
func (s *Service) Delete(ctx context.Context, userID, importID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, importID); err != nil {
		return err
	}
	if err := s.store.DeleteImport(ctx, importID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrImportNotFound{ImportID: importID}
		}
		return fmt.Errorf("failed to delete import: %w", err)
	}
	return nil
}

// Apply merges the selected parts of an import into the user's CV.
// Nothing is applied without an explicit selection.
func (s *Service) Apply(ctx context.Context, userID, importID uuid.UUID, sel Selection) (*db.ApplyResult, error) {
	if !sel.Any() {
		return nil, &ErrNothingSelected{}
	}
	imp, err := s.Get(ctx, userID, importID)
	if err != nil {
		return nil, err
	}
	if imp.Status == db.ImportStatusApplied {
		return nil, &ErrImportApplied{ImportID: importID}
	}

	res, err := s.store.ApplyImport(ctx, sel.toApplyInput(imp))
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyApplied):
			return nil, &ErrImportApplied{ImportID: importID}
		case errors.Is(err, db.ErrNotFound):
			return nil, &ErrImportNotFound{ImportID: importID}
		}
		return nil, fmt.Errorf("failed to apply import: %w", err)
	}

	s.logger.Info("import applied",
		zap.String("import_id", importID.String()),
		zap.Int("jobs_created", res.JobsCreated),
		zap.Int("education_created", res.EducationCreated),
		zap.Int("skills_linked", res.SkillsLinked))
	return res, nil
}

// CV returns the user's stored CV.
func (s *Service) CV(ctx context.Context, userID uuid.UUID) (*db.CV, error) {
	cv, err := s.store.GetCV(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}
	return cv, nil
}
