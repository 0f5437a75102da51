package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const applicationColumns = `id, job_id, seeker_id, stage, sub_stage, resume_url, resume_filename, cover_letter,
	resume_text, ats_score, ats_reasoning, missing_keywords, version, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*types.Application, error) {
	var a types.Application
	err := row.Scan(&a.ID, &a.JobID, &a.SeekerID, &a.Stage, &a.SubStage, &a.Resume.URL, &a.Resume.Filename,
		&a.CoverLetter, &a.ResumeText, &a.ATSScore, &a.ATSReasoning, &a.MissingKeywords, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication inserts an application. A second application by the same seeker
// for the same job yields *types.ErrConflict.
func (db *DB) CreateApplication(ctx context.Context, a *types.Application) error {
	if a.Version == 0 {
		a.Version = 1
	}
	err := db.q.QueryRow(ctx,
		`INSERT INTO job_applications (id, job_id, seeker_id, stage, sub_stage, resume_url, resume_filename,
		 cover_letter, resume_text, ats_score, ats_reasoning, missing_keywords, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at, updated_at`,
		a.ID, a.JobID, a.SeekerID, a.Stage, a.SubStage, a.Resume.URL, a.Resume.Filename, a.CoverLetter,
		a.ResumeText, a.ATSScore, a.ATSReasoning, nonNil(a.MissingKeywords), a.Version,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return &types.ErrConflict{Message: "you have already applied to this job"}
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetApplication retrieves an application by ID, returning nil when it does not exist
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.q.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// ListApplicationsBySeeker returns a seeker's applications, newest first
func (db *DB) ListApplicationsBySeeker(ctx context.Context, seekerID uuid.UUID) ([]types.Application, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE seeker_id = $1 ORDER BY created_at DESC`,
		seekerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListApplicationSummaries returns the kanban cards of a job, most recently updated first
func (db *DB) ListApplicationSummaries(ctx context.Context, jobID uuid.UUID) ([]types.ApplicationSummary, error) {
	rows, err := db.q.Query(ctx,
		`SELECT a.id, a.job_id, a.seeker_id, u.name, u.email, a.stage, a.sub_stage, a.ats_score,
		        a.created_at, a.updated_at
		 FROM job_applications a
		 JOIN users u ON u.id = a.seeker_id
		 WHERE a.job_id = $1
		 ORDER BY a.updated_at DESC, a.id`,
		jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list application summaries: %w", err)
	}
	defer rows.Close()

	summaries := []types.ApplicationSummary{}
	for rows.Next() {
		var s types.ApplicationSummary
		if err := rows.Scan(&s.ID, &s.JobID, &s.SeekerID, &s.SeekerName, &s.SeekerEmail,
			&s.Stage, &s.SubStage, &s.ATSScore, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// UpdateApplicationStage writes a.Stage and a.SubStage if the row still carries a.Version.
// On success a.Version and a.UpdatedAt are refreshed; a stale version yields *types.ErrConflict.
func (db *DB) UpdateApplicationStage(ctx context.Context, a *types.Application) error {
	err := db.q.QueryRow(ctx,
		`UPDATE job_applications
		 SET stage = $3, sub_stage = $4, version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $2
		 RETURNING version, updated_at`,
		a.ID, a.Version, a.Stage, a.SubStage,
	).Scan(&a.Version, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &types.ErrConflict{Message: "application was modified by another request, reload and try again"}
		}
		return fmt.Errorf("failed to update application stage: %w", err)
	}
	return nil
}

// UpdateApplicationScore stores a new scoring result
func (db *DB) UpdateApplicationScore(ctx context.Context, a *types.Application) error {
	err := db.q.QueryRow(ctx,
		`UPDATE job_applications
		 SET ats_score = $2, ats_reasoning = $3, missing_keywords = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		a.ID, a.ATSScore, a.ATSReasoning, nonNil(a.MissingKeywords),
	).Scan(&a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("application", a.ID)
		}
		return fmt.Errorf("failed to update application score: %w", err)
	}
	return nil
}

// TouchApplication bumps updated_at so kanban ordering reflects child activity
func (db *DB) TouchApplication(ctx context.Context, id uuid.UUID) error {
	if _, err := db.q.Exec(ctx, `UPDATE job_applications SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch application: %w", err)
	}
	return nil
}
