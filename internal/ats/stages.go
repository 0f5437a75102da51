package ats

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// MoveToStage moves an application forward to an enabled stage and resets its
// sub-stage to the stage's initial one.
func (s *Service) MoveToStage(ctx context.Context, actor types.Actor, id uuid.UUID, req types.MoveStageRequest) (*types.Application, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	var sc scope
	var change activity.StageChanged
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, id, "move applications")
		if err != nil {
			return err
		}
		app := sc.app
		if err := pipeline.ValidateMove(app.Stage, app.SubStage, req.Stage, sc.job.EnabledStages); err != nil {
			return err
		}

		change = activity.StageChanged{From: app.Stage, FromSub: app.SubStage, To: req.Stage, Reason: req.Reason}
		app.Stage = req.Stage
		app.SubStage = pipeline.InitialSubStage(req.Stage)
		change.ToSub = app.SubStage

		if err := tx.UpdateApplicationStage(ctx, app); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, app, change)
	})
	if err != nil {
		return nil, err
	}

	observability.StageTransitions.WithLabelValues(string(change.From), string(change.To)).Inc()
	s.log.Info("application moved", "application_id", id, "from", change.From, "to", change.To)
	return sc.app, nil
}

// UpdateSubStage changes the sub-stage within the application's current stage. Choosing
// the rejected sub-stage is handled as a rejection.
func (s *Service) UpdateSubStage(ctx context.Context, actor types.Actor, id uuid.UUID, req types.UpdateSubStageRequest) (*types.Application, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	if req.SubStage == types.SubStageRejected {
		return s.RejectApplication(ctx, actor, id, types.RejectRequest{})
	}

	var sc scope
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, id, "change sub-stages")
		if err != nil {
			return err
		}
		app := sc.app
		if err := pipeline.ValidateSubStage(app.Stage, app.SubStage, req.SubStage); err != nil {
			return err
		}

		change := activity.SubStageChanged{Stage: app.Stage, From: app.SubStage, To: req.SubStage}
		app.SubStage = req.SubStage
		if err := tx.UpdateApplicationStage(ctx, app); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, app, change)
	})
	if err != nil {
		return nil, err
	}
	return sc.app, nil
}

// RejectApplication moves the application to the rejected sub-stage of its current stage
// and emails the candidate.
func (s *Service) RejectApplication(ctx context.Context, actor types.Actor, id uuid.UUID, req types.RejectRequest) (*types.Application, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	var sc scope
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, id, "reject applications")
		if err != nil {
			return err
		}
		app := sc.app
		if err := pipeline.ValidateReject(app.SubStage); err != nil {
			return err
		}

		change := activity.ApplicationRejected{Stage: app.Stage, From: app.SubStage, Reason: req.Reason}
		app.SubStage = types.SubStageRejected
		if err := tx.UpdateApplicationStage(ctx, app); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, app, change)
	})
	if err != nil {
		return nil, err
	}

	s.notifyCandidate(ctx, sc, notify.TemplateApplicationRejected, func(candidate string) any {
		return notify.ApplicationRejectedData{CandidateName: candidate, JobTitle: sc.job.Title, Reason: req.Reason}
	})
	return sc.app, nil
}

// NextStage reports the next enabled stage after the application's current one.
func (s *Service) NextStage(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.NextStageResponse, error) {
	sc, err := loadScope(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	resp := &types.NextStageResponse{Current: sc.app.Stage}
	if next, ok := pipeline.NextStage(sc.app.Stage, sc.job.EnabledStages); ok {
		resp.Next = &next
		resp.HasNext = true
	}
	return resp, nil
}

// Kanban groups a job's applications by stage. Every enabled stage has a column, and
// each column lists the most recently updated application first.
func (s *Service) Kanban(ctx context.Context, actor types.Actor, jobID uuid.UUID) (*types.Kanban, error) {
	if err := requireEmployer(actor, "view the kanban board"); err != nil {
		return nil, err
	}

	var job *types.Job
	var summaries []types.ApplicationSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = s.store.GetJob(gctx, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		summaries, err = s.store.ListApplicationSummaries(gctx, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, types.NotFound("job", jobID)
	}
	if job.EmployerID != actor.ID {
		return nil, &types.ErrForbidden{Message: "job belongs to another employer"}
	}

	return BuildKanban(job, summaries), nil
}

// BuildKanban groups summaries into one column per enabled stage, preserving their order.
func BuildKanban(job *types.Job, summaries []types.ApplicationSummary) *types.Kanban {
	board := &types.Kanban{
		JobID:   job.ID,
		Stages:  job.EnabledStages,
		Columns: make(map[types.Stage][]types.ApplicationSummary, len(job.EnabledStages)),
	}
	for _, stage := range job.EnabledStages {
		board.Columns[stage] = []types.ApplicationSummary{}
	}
	for _, sum := range summaries {
		if column, ok := board.Columns[sum.Stage]; ok {
			board.Columns[sum.Stage] = append(column, sum)
		}
	}
	return board
}
