package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/cv-importer/internal/types"
)

// DefaultImportListLimit is used when ListImportsByUser is called with limit <= 0.
const DefaultImportListLimit = 50

const importColumns = `id, user_id, source, content_hash, result, status, created_at, applied_at`

func scanImport(row pgx.Row) (*Import, error) {
	var imp Import
	var raw []byte
	err := row.Scan(&imp.ID, &imp.UserID, &imp.Source, &imp.ContentHash, &raw, &imp.Status, &imp.CreatedAt, &imp.AppliedAt)
	if err != nil {
		return nil, err
	}
	imp.Result = types.NewParseResult()
	if err := json.Unmarshal(raw, imp.Result); err != nil {
		return nil, fmt.Errorf("failed to decode import result: %w", err)
	}
	return &imp, nil
}

// CreateImport stores a parse result as a pending import.
func (db *DB) CreateImport(ctx context.Context, input *CreateImportInput) (*Import, error) {
	if input == nil || input.Result == nil {
		return nil, fmt.Errorf("import result is required")
	}
	raw, err := json.Marshal(input.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import result: %w", err)
	}

	imp, err := scanImport(db.pool.QueryRow(ctx,
		`INSERT INTO linkedin_imports (user_id, source, content_hash, result, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+importColumns,
		input.UserID, input.Source, input.ContentHash, raw, ImportStatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create import: %w", err)
	}
	return imp, nil
}

// GetImport retrieves an import by ID. Returns nil, nil when it does not exist.
func (db *DB) GetImport(ctx context.Context, id uuid.UUID) (*Import, error) {
	imp, err := scanImport(db.pool.QueryRow(ctx,
		`SELECT `+importColumns+` FROM linkedin_imports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get import: %w", err)
	}
	return imp, nil
}

// ListImportsByUser lists a user's imports, newest first.
func (db *DB) ListImportsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ImportSummary, error) {
	if limit <= 0 {
		limit = DefaultImportListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, source, status,
		        COALESCE(result->'personal'->>'full_name', ''),
		        COALESCE(jsonb_array_length(result->'experience'), 0),
		        COALESCE(jsonb_array_length(result->'education'), 0),
		        COALESCE(jsonb_array_length(result->'skills'), 0),
		        created_at, applied_at
		 FROM linkedin_imports WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	summaries := []ImportSummary{}
	for rows.Next() {
		var s ImportSummary
		if err := rows.Scan(&s.ID, &s.Source, &s.Status, &s.FullName,
			&s.ExperienceCount, &s.EducationCount, &s.SkillCount, &s.CreatedAt, &s.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return summaries, nil
}

// DeleteImport deletes an import. CV rows created from it keep their data.
func (db *DB) DeleteImport(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM linkedin_imports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	return nil
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// markImportApplied sets an import's status to applied.
func markImportApplied(ctx context.Context, q execer, id uuid.UUID) error {
	result, err := q.Exec(ctx,
		`UPDATE linkedin_imports SET status = $1, applied_at = NOW() WHERE id = $2`,
		ImportStatusApplied, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark import applied: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	return nil
}
