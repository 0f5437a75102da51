// Package ats implements the hiring pipeline use cases: jobs, applications moving through
// stages, and the interviews, tasks, offers, compensation and meetings attached to them.
//
// Every mutating operation authorizes the actor, validates the change, then writes the
// mutation and exactly one activity row in a single transaction. Candidate emails are
// dispatched only after the transaction commits.
package ats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/scoring"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// Uploader stores candidate and employer documents.
type Uploader interface {
	UploadResume(ctx context.Context, applicationID uuid.UUID, f storage.File) (types.FileRef, error)
	UploadOfferLetter(ctx context.Context, applicationID uuid.UUID, f storage.File) (types.FileRef, error)
	UploadSignedOffer(ctx context.Context, applicationID uuid.UUID, f storage.File) (types.FileRef, error)
	UploadTaskDocument(ctx context.Context, applicationID uuid.UUID, f storage.File) (types.FileRef, error)
	UploadTaskSubmission(ctx context.Context, applicationID uuid.UUID, f storage.File) (types.FileRef, error)
}

// ResumeScorer rates a resume against a job. It never fails; degraded results carry a
// zero score and an explanation.
type ResumeScorer interface {
	Score(ctx context.Context, job scoring.Requirements, resumeText, coverLetter string) scoring.Result
}

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	ExtractText(data []byte, mimeType string) (string, error)
}

// Deps collects the collaborators of a Service.
type Deps struct {
	Store     Store
	Uploader  Uploader
	Scorer    ResumeScorer
	Extractor TextExtractor
	Notifier  notify.Sender
	Logger    *logging.Logger
	Now       func() time.Time
}

// Service runs the hiring pipeline use cases.
type Service struct {
	store      Store
	uploader   Uploader
	scorer     ResumeScorer
	extractor  TextExtractor
	notifier   notify.Sender
	activities *activity.Logger
	log        *logging.Logger
	now        func() time.Time
	newID      func() uuid.UUID
}

// NewService wires a Service. Store, Uploader, Scorer and Extractor are required.
func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = discardSender{}
	}
	return &Service{
		store:      deps.Store,
		uploader:   deps.Uploader,
		scorer:     deps.Scorer,
		extractor:  deps.Extractor,
		notifier:   deps.Notifier,
		activities: activity.NewLogger(deps.Now),
		log:        deps.Logger,
		now:        deps.Now,
		newID:      uuid.New,
	}
}

type discardSender struct{}

func (discardSender) Dispatch(context.Context, notify.Notification) {}

// scope is an application together with its job, loaded for an authorized actor.
type scope struct {
	app *types.Application
	job *types.Job
}

func requireEmployer(actor types.Actor, action string) error {
	if !actor.IsEmployer() {
		return &types.ErrForbidden{Message: fmt.Sprintf("only employers can %s", action)}
	}
	return nil
}

func requireSeeker(actor types.Actor, action string) error {
	if actor.Role != types.RoleSeeker {
		return &types.ErrForbidden{Message: fmt.Sprintf("only candidates can %s", action)}
	}
	return nil
}

// loadScope fetches an application and its job and checks that actor may see it:
// employers must own the job, seekers must own the application.
func loadScope(ctx context.Context, repo Repository, actor types.Actor, applicationID uuid.UUID) (scope, error) {
	app, err := repo.GetApplication(ctx, applicationID)
	if err != nil {
		return scope{}, err
	}
	if app == nil {
		return scope{}, types.NotFound("application", applicationID)
	}
	job, err := repo.GetJob(ctx, app.JobID)
	if err != nil {
		return scope{}, err
	}
	if job == nil {
		return scope{}, types.NotFound("job", app.JobID)
	}

	switch actor.Role {
	case types.RoleEmployer:
		if job.EmployerID != actor.ID {
			return scope{}, &types.ErrForbidden{Message: "application belongs to another employer's job"}
		}
	case types.RoleSeeker:
		if app.SeekerID != actor.ID {
			return scope{}, &types.ErrForbidden{Message: "application belongs to another candidate"}
		}
	default:
		return scope{}, &types.ErrForbidden{Message: "unknown role"}
	}
	return scope{app: app, job: job}, nil
}

// loadEmployerScope is loadScope restricted to employers.
func loadEmployerScope(ctx context.Context, repo Repository, actor types.Actor, applicationID uuid.UUID, action string) (scope, error) {
	if err := requireEmployer(actor, action); err != nil {
		return scope{}, err
	}
	return loadScope(ctx, repo, actor, applicationID)
}

func ensureOpen(app *types.Application) error {
	if pipeline.IsTerminal(app.SubStage) {
		return types.Invalid("application", fmt.Sprintf("application is %s and can no longer change",
			pipeline.SubStageDisplayName(app.SubStage)))
	}
	return nil
}

// advance moves the application to want when it is currently in stage and the stage
// defines that sub-stage. Otherwise it only bumps updated_at. No activity is written.
func advance(ctx context.Context, repo Repository, app *types.Application, stage types.Stage, want types.SubStage) error {
	if app.Stage == stage {
		if next, ok := pipeline.Advance(app.Stage, app.SubStage, want); ok {
			app.SubStage = next
			return repo.UpdateApplicationStage(ctx, app)
		}
	}
	return repo.TouchApplication(ctx, app.ID)
}

func (s *Service) record(ctx context.Context, repo Repository, actor types.Actor, app *types.Application, e activity.Event) error {
	_, err := s.activities.Log(ctx, repo, actor, app, e)
	return err
}

// notifyCandidate emails the application's seeker. Lookup failures are logged and the
// notification dropped; the triggering mutation has already committed.
func (s *Service) notifyCandidate(ctx context.Context, sc scope, template notify.Template, build func(candidate string) any) {
	seeker, err := s.store.GetUser(ctx, sc.app.SeekerID)
	if err != nil || seeker == nil {
		s.log.Warn("notification recipient lookup failed",
			"template", template, "application_id", sc.app.ID, "error", err)
		return
	}
	s.notifier.Dispatch(ctx, notify.Notification{
		Template: template,
		To:       seeker.Email,
		Data:     build(seeker.Name),
	})
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}
