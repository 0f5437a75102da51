package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const jobColumns = `id, employer_id, title, description, requirements, skills, enabled_stages, status, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*types.Job, error) {
	var j types.Job
	var stages []string
	err := row.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Requirements, &j.Skills,
		&stages, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.EnabledStages = stringsToStages(stages)
	return &j, nil
}

// CreateJob inserts a job posting
func (db *DB) CreateJob(ctx context.Context, j *types.Job) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO jobs (id, employer_id, title, description, requirements, skills, enabled_stages, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		j.ID, j.EmployerID, j.Title, j.Description, nonNil(j.Requirements), nonNil(j.Skills),
		stagesToStrings(j.EnabledStages), j.Status,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID, returning nil when it does not exist
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	j, err := scanJob(db.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobsByEmployer returns an employer's jobs, newest first
func (db *DB) ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]types.Job, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC`, employerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// UpdateJob stores the mutable job fields
func (db *DB) UpdateJob(ctx context.Context, j *types.Job) error {
	err := db.q.QueryRow(ctx,
		`UPDATE jobs SET enabled_stages = $2, status = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		j.ID, stagesToStrings(j.EnabledStages), j.Status,
	).Scan(&j.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("job", j.ID)
		}
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}
