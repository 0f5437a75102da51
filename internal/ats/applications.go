package ats

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/scoring"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

const maxCoverLetterChars = 10000

func requirementsOf(job *types.Job) scoring.Requirements {
	return scoring.Requirements{
		Title:        job.Title,
		Description:  job.Description,
		Requirements: job.Requirements,
		Skills:       job.Skills,
	}
}

// SubmitApplication files a seeker's application to an open job. The resume is parsed,
// stored and scored before the application is created in the first stage.
func (s *Service) SubmitApplication(ctx context.Context, actor types.Actor, jobID uuid.UUID, coverLetter string, resume storage.File) (*types.Application, error) {
	if err := requireSeeker(actor, "apply to jobs"); err != nil {
		return nil, err
	}
	coverLetter = strings.TrimSpace(coverLetter)
	if len(coverLetter) > maxCoverLetterChars {
		return nil, types.Invalid("cover_letter", "must be at most 10000 characters")
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != types.JobStatusOpen {
		return nil, types.Invalid("job", "job is no longer accepting applications")
	}
	existing, err := s.store.ListApplicationsBySeeker(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.JobID == jobID {
			return nil, &types.ErrConflict{Message: "you have already applied to this job"}
		}
	}

	text, err := s.extractor.ExtractText(resume.Data, ingestion.DetectMimeType(resume.Filename, resume.ContentType))
	if err != nil {
		return nil, err
	}

	app := &types.Application{
		ID:          s.newID(),
		JobID:       jobID,
		SeekerID:    actor.ID,
		Stage:       types.StageInReview,
		SubStage:    pipeline.InitialSubStage(types.StageInReview),
		CoverLetter: coverLetter,
		ResumeText:  text,
	}
	ref, err := s.uploader.UploadResume(ctx, app.ID, resume)
	if err != nil {
		return nil, err
	}
	app.Resume = ref

	result := s.scorer.Score(ctx, requirementsOf(job), text, coverLetter)
	app.ATSScore = result.Score
	app.ATSReasoning = result.Reasoning
	app.MissingKeywords = result.MissingKeywords

	err = s.store.InTx(ctx, func(tx Repository) error {
		if err := tx.CreateApplication(ctx, app); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, app, activity.ApplicationSubmitted{JobTitle: job.Title, Score: app.ATSScore})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("application submitted", "application_id", app.ID, "job_id", jobID, "ats_score", app.ATSScore)
	return app, nil
}

// GetApplication returns an application with all of its child records. Comments are
// internal notes and only returned to the employer.
func (s *Service) GetApplication(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.ApplicationDetail, error) {
	sc, err := loadScope(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &types.ApplicationDetail{
		Application: sc.app,
		Job:         sc.job,
		Comments:    []types.Comment{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail.Interviews, err = s.store.ListInterviews(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Tasks, err = s.store.ListTasks(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Offers, err = s.store.ListOffers(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Compensation, err = s.store.GetCompensationByApplication(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Meetings, err = s.store.ListMeetings(gctx, id)
		return err
	})
	if actor.IsEmployer() {
		g.Go(func() error {
			var err error
			detail.Comments, err = s.store.ListComments(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListMyApplications returns the calling seeker's applications.
func (s *Service) ListMyApplications(ctx context.Context, actor types.Actor) ([]types.Application, error) {
	if err := requireSeeker(actor, "list their applications"); err != nil {
		return nil, err
	}
	return s.store.ListApplicationsBySeeker(ctx, actor.ID)
}

// RescoreApplication scores the stored resume again against the job's current requirements.
func (s *Service) RescoreApplication(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Application, error) {
	sc, err := loadEmployerScope(ctx, s.store, actor, id, "rescore applications")
	if err != nil {
		return nil, err
	}

	result := s.scorer.Score(ctx, requirementsOf(sc.job), sc.app.ResumeText, sc.app.CoverLetter)
	previous := sc.app.ATSScore

	var app *types.Application
	err = s.store.InTx(ctx, func(tx Repository) error {
		fresh, err := tx.GetApplication(ctx, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			return types.NotFound("application", id)
		}
		fresh.ATSScore = result.Score
		fresh.ATSReasoning = result.Reasoning
		fresh.MissingKeywords = result.MissingKeywords
		if err := tx.UpdateApplicationScore(ctx, fresh); err != nil {
			return err
		}
		app = fresh
		return s.record(ctx, tx, actor, fresh, activity.ApplicationRescored{Previous: previous, Score: result.Score})
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListActivities returns an application's audit trail, newest first.
func (s *Service) ListActivities(ctx context.Context, actor types.Actor, id uuid.UUID) ([]types.Activity, error) {
	if _, err := loadEmployerScope(ctx, s.store, actor, id, "view the activity log"); err != nil {
		return nil, err
	}
	return s.store.ListActivities(ctx, id)
}
