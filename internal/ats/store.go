package ats

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// Repository is the persistence surface the service works against. Getters return
// (nil, nil) when a row does not exist.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)

	CreateJob(ctx context.Context, j *types.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]types.Job, error)
	UpdateJob(ctx context.Context, j *types.Job) error

	CreateApplication(ctx context.Context, a *types.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	ListApplicationsBySeeker(ctx context.Context, seekerID uuid.UUID) ([]types.Application, error)
	ListApplicationSummaries(ctx context.Context, jobID uuid.UUID) ([]types.ApplicationSummary, error)
	UpdateApplicationStage(ctx context.Context, a *types.Application) error
	UpdateApplicationScore(ctx context.Context, a *types.Application) error
	TouchApplication(ctx context.Context, id uuid.UUID) error

	CreateInterview(ctx context.Context, i *types.Interview) error
	GetInterview(ctx context.Context, id uuid.UUID) (*types.Interview, error)
	ListInterviews(ctx context.Context, applicationID uuid.UUID) ([]types.Interview, error)
	UpdateInterview(ctx context.Context, i *types.Interview) error

	CreateTask(ctx context.Context, t *types.TechnicalTask) error
	GetTask(ctx context.Context, id uuid.UUID) (*types.TechnicalTask, error)
	ListTasks(ctx context.Context, applicationID uuid.UUID) ([]types.TechnicalTask, error)
	UpdateTask(ctx context.Context, t *types.TechnicalTask) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	CreateOffer(ctx context.Context, o *types.OfferDocument) error
	GetOffer(ctx context.Context, id uuid.UUID) (*types.OfferDocument, error)
	ListOffers(ctx context.Context, applicationID uuid.UUID) ([]types.OfferDocument, error)
	UpdateOffer(ctx context.Context, o *types.OfferDocument) error

	CreateCompensation(ctx context.Context, c *types.Compensation) error
	GetCompensation(ctx context.Context, id uuid.UUID) (*types.Compensation, error)
	GetCompensationByApplication(ctx context.Context, applicationID uuid.UUID) (*types.Compensation, error)
	UpdateCompensation(ctx context.Context, c *types.Compensation) error

	CreateMeeting(ctx context.Context, m *types.CompensationMeeting) error
	GetMeeting(ctx context.Context, id uuid.UUID) (*types.CompensationMeeting, error)
	ListMeetings(ctx context.Context, applicationID uuid.UUID) ([]types.CompensationMeeting, error)
	UpdateMeeting(ctx context.Context, m *types.CompensationMeeting) error

	CreateComment(ctx context.Context, c *types.Comment) error
	ListComments(ctx context.Context, applicationID uuid.UUID) ([]types.Comment, error)

	CreateActivity(ctx context.Context, a *types.Activity) error
	ListActivities(ctx context.Context, applicationID uuid.UUID) ([]types.Activity, error)
}

// Store is a Repository that can also run a unit of work atomically.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(tx Repository) error) error
}

type postgresStore struct {
	*db.DB
}

// NewPostgresStore adapts a database connection to Store.
func NewPostgresStore(database *db.DB) Store {
	return postgresStore{DB: database}
}

func (s postgresStore) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return s.DB.InTx(ctx, func(tx *db.DB) error {
		return fn(tx)
	})
}
