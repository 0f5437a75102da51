package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// CreateActivity appends an activity row. Rows are never updated or deleted.
func (db *DB) CreateActivity(ctx context.Context, a *types.Activity) error {
	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	_, err := db.q.Exec(ctx,
		`INSERT INTO ats_activities (id, application_id, type, title, description, performed_by,
		 performed_by_name, stage, sub_stage, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.ApplicationID, a.Type, a.Title, a.Description, a.PerformedBy, a.PerformedByName,
		a.Stage, a.SubStage, metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// ListActivities returns an application's activity log, newest first
func (db *DB) ListActivities(ctx context.Context, applicationID uuid.UUID) ([]types.Activity, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, application_id, type, title, description, performed_by, performed_by_name,
		        stage, sub_stage, metadata, created_at
		 FROM ats_activities
		 WHERE application_id = $1
		 ORDER BY created_at DESC, id`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []types.Activity{}
	for rows.Next() {
		var a types.Activity
		if err := rows.Scan(&a.ID, &a.ApplicationID, &a.Type, &a.Title, &a.Description, &a.PerformedBy,
			&a.PerformedByName, &a.Stage, &a.SubStage, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CreateComment inserts a comment
func (db *DB) CreateComment(ctx context.Context, c *types.Comment) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_comments (id, application_id, author_id, author_name, stage, sub_stage, text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		c.ID, c.ApplicationID, c.AuthorID, c.AuthorName, c.Stage, c.SubStage, c.Text,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns an application's comments, oldest first
func (db *DB) ListComments(ctx context.Context, applicationID uuid.UUID) ([]types.Comment, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, application_id, author_id, author_name, stage, sub_stage, text, created_at
		 FROM ats_comments
		 WHERE application_id = $1
		 ORDER BY created_at`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []types.Comment{}
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.AuthorID, &c.AuthorName, &c.Stage, &c.SubStage,
			&c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
