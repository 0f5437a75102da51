package types

import (
	"time"

	"github.com/google/uuid"
)

// FileRef points at a blob held by the object store
type FileRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// IsZero reports whether no file is referenced.
func (f FileRef) IsZero() bool {
	return f.URL == ""
}

// Application is one candidate's application to one job.
// SubStage is always a member of the sub-stage set of Stage.
type Application struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	SeekerID        uuid.UUID `json:"seeker_id"`
	Stage           Stage     `json:"stage"`
	SubStage        SubStage  `json:"sub_stage"`
	Resume          FileRef   `json:"resume"`
	CoverLetter     string    `json:"cover_letter,omitempty"`
	ResumeText      string    `json:"-"`
	ATSScore        int       `json:"ats_score"`
	ATSReasoning    string    `json:"ats_reasoning,omitempty"`
	MissingKeywords []string  `json:"missing_keywords"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplicationSummary is the kanban card view of an application joined with the seeker profile
type ApplicationSummary struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	SeekerID    uuid.UUID `json:"seeker_id"`
	SeekerName  string    `json:"seeker_name"`
	SeekerEmail string    `json:"seeker_email"`
	Stage       Stage     `json:"stage"`
	SubStage    SubStage  `json:"sub_stage"`
	ATSScore    int       `json:"ats_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationDetail bundles an application with its child records
type ApplicationDetail struct {
	Application  *Application          `json:"application"`
	Job          *Job                  `json:"job"`
	Interviews   []Interview           `json:"interviews"`
	Tasks        []TechnicalTask       `json:"tasks"`
	Offers       []OfferDocument       `json:"offers"`
	Compensation *Compensation         `json:"compensation,omitempty"`
	Meetings     []CompensationMeeting `json:"compensation_meetings"`
	Comments     []Comment             `json:"comments"`
}

// Kanban groups a job's applications by stage
type Kanban struct {
	JobID   uuid.UUID                      `json:"job_id"`
	Stages  []Stage                        `json:"stages"`
	Columns map[Stage][]ApplicationSummary `json:"columns"`
}

// MoveStageRequest is the body of PATCH /ats/applications/{id}/stage
type MoveStageRequest struct {
	Stage  Stage  `json:"stage" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// UpdateSubStageRequest is the body of PATCH /ats/applications/{id}/substage
type UpdateSubStageRequest struct {
	SubStage SubStage `json:"sub_stage" validate:"required"`
}

// RejectRequest is the body of POST /ats/applications/{id}/reject
type RejectRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// NextStageResponse answers GET /ats/applications/{id}/next-stage
type NextStageResponse struct {
	Current Stage  `json:"current"`
	Next    *Stage `json:"next,omitempty"`
	HasNext bool   `json:"has_next"`
}
