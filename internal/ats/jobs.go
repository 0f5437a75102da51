package ats

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/parsing"
	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// CreateJob opens a job posting owned by the calling employer. An empty stage list
// enables every stage.
func (s *Service) CreateJob(ctx context.Context, actor types.Actor, req types.CreateJobRequest) (*types.Job, error) {
	if err := requireEmployer(actor, "post jobs"); err != nil {
		return nil, err
	}
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	stages, err := pipeline.NormalizeEnabled(req.EnabledStages)
	if err != nil {
		return nil, err
	}

	job := &types.Job{
		ID:            s.newID(),
		EmployerID:    actor.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Requirements:  parsing.NormalizeRequirements(req.Requirements),
		Skills:        parsing.NormalizeSkills(req.Skills),
		EnabledStages: stages,
		Status:        types.JobStatusOpen,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	s.log.Info("job created", "job_id", job.ID, "employer_id", actor.ID, "stages", len(stages))
	return job, nil
}

// GetJob returns a job. Any authenticated user may read postings.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, types.NotFound("job", id)
	}
	return job, nil
}

// ListJobs returns the calling employer's jobs.
func (s *Service) ListJobs(ctx context.Context, actor types.Actor) ([]types.Job, error) {
	if err := requireEmployer(actor, "list their jobs"); err != nil {
		return nil, err
	}
	return s.store.ListJobsByEmployer(ctx, actor.ID)
}

func (s *Service) ownedJob(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID) (*types.Job, error) {
	if err := requireEmployer(actor, "manage jobs"); err != nil {
		return nil, err
	}
	job, err := repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, types.NotFound("job", id)
	}
	if job.EmployerID != actor.ID {
		return nil, &types.ErrForbidden{Message: "job belongs to another employer"}
	}
	return job, nil
}

// UpdateJobStages replaces the enabled stages of a job. A stage that still holds
// applications cannot be disabled.
func (s *Service) UpdateJobStages(ctx context.Context, actor types.Actor, id uuid.UUID, req types.UpdateJobStagesRequest) (*types.Job, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	stages, err := pipeline.NormalizeEnabled(req.EnabledStages)
	if err != nil {
		return nil, err
	}

	var job *types.Job
	err = s.store.InTx(ctx, func(tx Repository) error {
		owned, err := s.ownedJob(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		summaries, err := tx.ListApplicationSummaries(ctx, id)
		if err != nil {
			return err
		}
		for _, sum := range summaries {
			if !slices.Contains(stages, sum.Stage) {
				return types.Invalid("enabled_stages", fmt.Sprintf("%s still has applications",
					pipeline.StageDisplayName(sum.Stage)))
			}
		}
		owned.EnabledStages = stages
		job = owned
		return tx.UpdateJob(ctx, owned)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// CloseJob stops a job from accepting applications.
func (s *Service) CloseJob(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Job, error) {
	job, err := s.ownedJob(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	if job.Status == types.JobStatusClosed {
		return job, nil
	}
	job.Status = types.JobStatusClosed
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
