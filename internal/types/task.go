package types

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks a technical task through assigned -> submitted -> under_review -> completed
type TaskStatus string

const (
	TaskAssigned    TaskStatus = "assigned"
	TaskSubmitted   TaskStatus = "submitted"
	TaskUnderReview TaskStatus = "under_review"
	TaskCompleted   TaskStatus = "completed"
)

// TechnicalTask is a take-home assignment given to a candidate
type TechnicalTask struct {
	ID             uuid.UUID  `json:"id"`
	ApplicationID  uuid.UUID  `json:"application_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Document       FileRef    `json:"document"`
	Submission     FileRef    `json:"submission"`
	SubmissionLink string     `json:"submission_link,omitempty"`
	SubmissionNote string     `json:"submission_note,omitempty"`
	Status         TaskStatus `json:"status"`
	Feedback       string     `json:"feedback,omitempty"`
	Rating         *int       `json:"rating,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AssignTaskRequest carries the form fields of POST /ats/tasks
type AssignTaskRequest struct {
	ApplicationID uuid.UUID  `json:"application_id" validate:"required"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"required,max=10000"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// SubmitTaskRequest carries the form fields of POST /ats/tasks/{id}/submit.
// Either an uploaded file or SubmissionLink is required.
type SubmitTaskRequest struct {
	SubmissionLink string `json:"submission_link,omitempty" validate:"omitempty,url"`
	SubmissionNote string `json:"submission_note,omitempty" validate:"max=5000"`
}

// CompleteTaskRequest is the body of POST /ats/tasks/{id}/complete
type CompleteTaskRequest struct {
	Feedback string `json:"feedback,omitempty" validate:"max=5000"`
	Rating   *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// TaskDetailsPatch carries the editable fields of a task
type TaskDetailsPatch struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskDetailsPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil
}

// UpdateTaskRequest is the body of PATCH /ats/tasks/{id}
type UpdateTaskRequest struct {
	TaskDetailsPatch
	Status   *TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=assigned submitted under_review completed"`
	Feedback *string     `json:"feedback,omitempty" validate:"omitempty,max=5000"`
	Rating   *int        `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
