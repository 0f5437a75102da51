package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the posting state of a job
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job is a posting owned by an employer. EnabledStages is kept in canonical pipeline order.
type Job struct {
	ID            uuid.UUID `json:"id"`
	EmployerID    uuid.UUID `json:"employer_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Requirements  []string  `json:"requirements"`
	Skills        []string  `json:"skills"`
	EnabledStages []Stage   `json:"enabled_stages"`
	Status        JobStatus `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateJobRequest is the body of POST /ats/jobs
type CreateJobRequest struct {
	Title         string   `json:"title" validate:"required,min=2,max=200"`
	Description   string   `json:"description" validate:"required"`
	Requirements  []string `json:"requirements" validate:"dive,required"`
	Skills        []string `json:"skills" validate:"dive,required"`
	EnabledStages []Stage  `json:"enabled_stages,omitempty"`
}

// UpdateJobStagesRequest is the body of PATCH /ats/jobs/{id}/stages
type UpdateJobStagesRequest struct {
	EnabledStages []Stage `json:"enabled_stages" validate:"required,min=1"`
}
