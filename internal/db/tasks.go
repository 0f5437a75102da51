package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const taskColumns = `id, application_id, title, description, due_date, document_url, document_filename,
	submission_url, submission_filename, submission_link, submission_note, status, feedback, rating,
	submitted_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*types.TechnicalTask, error) {
	var t types.TechnicalTask
	err := row.Scan(&t.ID, &t.ApplicationID, &t.Title, &t.Description, &t.DueDate, &t.Document.URL,
		&t.Document.Filename, &t.Submission.URL, &t.Submission.Filename, &t.SubmissionLink,
		&t.SubmissionNote, &t.Status, &t.Feedback, &t.Rating, &t.SubmittedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts a technical task
func (db *DB) CreateTask(ctx context.Context, t *types.TechnicalTask) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_technical_tasks (id, application_id, title, description, due_date,
		 document_url, document_filename, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		t.ID, t.ApplicationID, t.Title, t.Description, t.DueDate, t.Document.URL, t.Document.Filename, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create technical task: %w", err)
	}
	return nil
}

// GetTask retrieves a technical task by ID, returning nil when it does not exist
func (db *DB) GetTask(ctx context.Context, id uuid.UUID) (*types.TechnicalTask, error) {
	t, err := scanTask(db.q.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM ats_technical_tasks WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get technical task: %w", err)
	}
	return t, nil
}

// ListTasks returns an application's technical tasks, oldest first
func (db *DB) ListTasks(ctx context.Context, applicationID uuid.UUID) ([]types.TechnicalTask, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+taskColumns+` FROM ats_technical_tasks WHERE application_id = $1 ORDER BY created_at`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list technical tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.TechnicalTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan technical task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask stores every mutable task field
func (db *DB) UpdateTask(ctx context.Context, t *types.TechnicalTask) error {
	err := db.q.QueryRow(ctx,
		`UPDATE ats_technical_tasks
		 SET title = $2, description = $3, due_date = $4, document_url = $5, document_filename = $6,
		     submission_url = $7, submission_filename = $8, submission_link = $9, submission_note = $10,
		     status = $11, feedback = $12, rating = $13, submitted_at = $14, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		t.ID, t.Title, t.Description, t.DueDate, t.Document.URL, t.Document.Filename, t.Submission.URL,
		t.Submission.Filename, t.SubmissionLink, t.SubmissionNote, t.Status, t.Feedback, t.Rating, t.SubmittedAt,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("technical task", t.ID)
		}
		return fmt.Errorf("failed to update technical task: %w", err)
	}
	return nil
}

// DeleteTask removes a technical task
func (db *DB) DeleteTask(ctx context.Context, id uuid.UUID) error {
	result, err := db.q.Exec(ctx, `DELETE FROM ats_technical_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete technical task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return types.NotFound("technical task", id)
	}
	return nil
}
