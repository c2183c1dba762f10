package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-importer/internal/types"
)

// ErrAlreadyApplied is returned by ApplyImport for an import that was applied before.
var ErrAlreadyApplied = errors.New("import already applied")

// ApplyImport merges the selected parts of an import's result into the user's CV and
// marks the import applied, all in one transaction. Jobs match on company and role,
// education on school and degree, skills on their lowercased name; matched rows are
// left untouched.
func (db *DB) ApplyImport(ctx context.Context, input *ApplyImportInput) (*ApplyResult, error) {
	if input == nil || input.Result == nil {
		return nil, fmt.Errorf("import result is required")
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			_ = rErr
		}
	}()

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM linkedin_imports WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		input.ImportID, input.UserID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("import %s: %w", input.ImportID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock import: %w", err)
	}
	if status == ImportStatusApplied {
		return nil, ErrAlreadyApplied
	}

	res := &ApplyResult{}
	r := input.Result

	if input.Personal {
		if err := upsertProfile(ctx, tx, input.UserID, r); err != nil {
			return nil, err
		}
		res.ProfileUpdated = true
	}

	if input.Experience {
		for _, e := range r.Experience {
			created, err := insertJob(ctx, tx, input.UserID, input.ImportID, e)
			if err != nil {
				return nil, err
			}
			if created {
				res.JobsCreated++
			} else {
				res.JobsMatched++
			}
		}
	}

	if input.Education {
		for _, e := range r.Education {
			created, err := insertEducation(ctx, tx, input.UserID, input.ImportID, e)
			if err != nil {
				return nil, err
			}
			if created {
				res.EducationCreated++
			} else {
				res.EducationMatched++
			}
		}
	}

	if input.Skills {
		for _, s := range r.Skills {
			linked, err := linkSkill(ctx, tx, input.UserID, s)
			if err != nil {
				return nil, err
			}
			if linked {
				res.SkillsLinked++
			}
		}
	}

	if err := markImportApplied(ctx, tx, input.ImportID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

// upsertProfile writes the personal block. Empty parsed fields keep the stored value.
func upsertProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID, r *types.ParseResult) error {
	p := r.Personal
	_, err := tx.Exec(ctx,
		`INSERT INTO cv_profiles (user_id, full_name, headline, location, email, profile_url, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     full_name   = COALESCE(NULLIF(EXCLUDED.full_name, ''), cv_profiles.full_name),
		     headline    = COALESCE(NULLIF(EXCLUDED.headline, ''), cv_profiles.headline),
		     location    = COALESCE(NULLIF(EXCLUDED.location, ''), cv_profiles.location),
		     email       = COALESCE(NULLIF(EXCLUDED.email, ''), cv_profiles.email),
		     profile_url = COALESCE(NULLIF(EXCLUDED.profile_url, ''), cv_profiles.profile_url),
		     summary     = COALESCE(NULLIF(EXCLUDED.summary, ''), cv_profiles.summary),
		     updated_at  = NOW()`,
		userID, p.FullName, p.Headline, p.Location, p.Email, p.ProfileURL, r.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func insertJob(ctx context.Context, tx pgx.Tx, userID, importID uuid.UUID, e types.ExperienceEntry) (bool, error) {
	start, err := ParseMonth(e.StartDate)
	if err != nil {
		return false, err
	}
	end, err := ParseMonth(e.EndDate)
	if err != nil {
		return false, err
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO jobs (user_id, company, role_title, location, start_date, end_date, is_current, description, source_import_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, company, role_title) DO NOTHING
		 RETURNING id`,
		userID, e.Company, e.Position, e.Location, start, end, e.IsCurrent, e.Description, importID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create job %s at %s: %w", e.Position, e.Company, err)
	}
	return true, nil
}

func insertEducation(ctx context.Context, tx pgx.Tx, userID, importID uuid.UUID, e types.EducationEntry) (bool, error) {
	start, err := ParseMonth(e.StartDate)
	if err != nil {
		return false, err
	}
	end, err := ParseMonth(e.EndDate)
	if err != nil {
		return false, err
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO education (user_id, school, degree, field, start_date, end_date, is_current, source_import_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, school, degree) DO NOTHING
		 RETURNING id`,
		userID, e.School, e.Degree, e.FieldOfStudy, start, end, e.IsCurrent, importID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create education %s: %w", e.School, err)
	}
	return true, nil
}

// linkSkill finds or creates the skill and links it to the user.
// It reports false when the user already had the skill.
func linkSkill(ctx context.Context, tx pgx.Tx, userID uuid.UUID, s types.SkillEntry) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(s.Name))
	if normalized == "" {
		return false, nil
	}
	category := s.Category
	if category == "" {
		category = types.SkillCategoryOther
	}
	level := s.Level
	if level == "" {
		level = types.DefaultSkillLevel
	}

	var skillID uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO skills (name, name_normalized, category)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name_normalized) DO UPDATE SET name = skills.name
		 RETURNING id`,
		s.Name, normalized, category,
	).Scan(&skillID)
	if err != nil {
		return false, fmt.Errorf("failed to create skill %s: %w", s.Name, err)
	}

	result, err := tx.Exec(ctx,
		`INSERT INTO user_skills (user_id, skill_id, level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		userID, skillID, level,
	)
	if err != nil {
		return false, fmt.Errorf("failed to link skill %s: %w", s.Name, err)
	}
	return result.RowsAffected() > 0, nil
}

// GetProfile retrieves the personal block of a user's CV. Returns nil, nil when none is stored.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, full_name, headline, location, email, profile_url, summary, updated_at
		 FROM cv_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Headline, &p.Location, &p.Email, &p.ProfileURL, &p.Summary, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ListJobs lists a user's jobs, current and most recent first.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, company, role_title, location, start_date, end_date,
		        is_current, description, source_import_id, created_at
		 FROM jobs WHERE user_id = $1
		 ORDER BY is_current DESC, start_date DESC NULLS LAST, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.UserID, &j.Company, &j.RoleTitle, &j.Location, &j.StartDate, &j.EndDate,
			&j.IsCurrent, &j.Description, &j.SourceImportID, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ListEducation lists a user's education entries, most recent first.
func (db *DB) ListEducation(ctx context.Context, userID uuid.UUID) ([]Education, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, school, degree, field, start_date, end_date,
		        is_current, source_import_id, created_at
		 FROM education WHERE user_id = $1
		 ORDER BY start_date DESC NULLS LAST, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list education: %w", err)
	}
	defer rows.Close()

	entries := []Education{}
	for rows.Next() {
		var e Education
		if err := rows.Scan(&e.ID, &e.UserID, &e.School, &e.Degree, &e.Field, &e.StartDate, &e.EndDate,
			&e.IsCurrent, &e.SourceImportID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListUserSkills lists the skills linked to a user, ordered by name.
func (db *DB) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]UserSkill, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.id, s.name, s.category, us.level
		 FROM user_skills us JOIN skills s ON s.id = us.skill_id
		 WHERE us.user_id = $1
		 ORDER BY s.name_normalized`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user skills: %w", err)
	}
	defer rows.Close()

	skills := []UserSkill{}
	for rows.Next() {
		var s UserSkill
		if err := rows.Scan(&s.SkillID, &s.Name, &s.Category, &s.Level); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// GetCV assembles a user's stored CV.
func (db *DB) GetCV(ctx context.Context, userID uuid.UUID) (*CV, error) {
	profile, err := db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := db.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}
	education, err := db.ListEducation(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills, err := db.ListUserSkills(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CV{Profile: profile, Jobs: jobs, Education: education, Skills: skills}, nil
}
