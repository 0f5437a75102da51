package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// Repository persists activity rows
type Repository interface {
	CreateActivity(ctx context.Context, a *types.Activity) error
}

// Logger writes exactly one activity row per recorded event
type Logger struct {
	now func() time.Time
}

// NewLogger creates a Logger. A nil clock uses time.Now.
func NewLogger(now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{now: now}
}

// Log renders e and stores it against app. The row captures the application's stage and
// sub-stage as passed, so callers hand in the state after their mutation.
func (l *Logger) Log(ctx context.Context, repo Repository, actor types.Actor, app *types.Application, e Event) (*types.Activity, error) {
	entry := Describe(e)
	row := &types.Activity{
		ID:              uuid.New(),
		ApplicationID:   app.ID,
		Type:            entry.Type,
		Title:           entry.Title,
		Description:     entry.Description,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Stage:           app.Stage,
		SubStage:        app.SubStage,
		Metadata:        entry.Metadata,
		CreatedAt:       l.now().UTC(),
	}
	if err := repo.CreateActivity(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to record %s activity: %w", entry.Type, err)
	}
	observability.ActivitiesRecorded.WithLabelValues(string(entry.Type)).Inc()
	return row, nil
}
