package types

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an audit row
type ActivityType string

const (
	ActivityApplicationSubmitted ActivityType = "APPLICATION_SUBMITTED"
	ActivityApplicationRescored  ActivityType = "APPLICATION_RESCORED"
	ActivityStageChange          ActivityType = "STAGE_CHANGE"
	ActivitySubStageChange       ActivityType = "SUBSTAGE_CHANGE"
	ActivityApplicationRejected  ActivityType = "APPLICATION_REJECTED"

	ActivityInterviewScheduled     ActivityType = "INTERVIEW_SCHEDULED"
	ActivityInterviewCompleted     ActivityType = "INTERVIEW_COMPLETED"
	ActivityInterviewCancelled     ActivityType = "INTERVIEW_CANCELLED"
	ActivityInterviewFeedbackAdded ActivityType = "INTERVIEW_FEEDBACK_ADDED"
	ActivityInterviewUpdated       ActivityType = "INTERVIEW_UPDATED"

	ActivityTaskAssigned    ActivityType = "TASK_ASSIGNED"
	ActivityTaskSubmitted   ActivityType = "TASK_SUBMITTED"
	ActivityTaskUnderReview ActivityType = "TASK_UNDER_REVIEW"
	ActivityTaskCompleted   ActivityType = "TASK_COMPLETED"
	ActivityTaskUpdated     ActivityType = "TASK_UPDATED"
	ActivityTaskDeleted     ActivityType = "TASK_DELETED"

	ActivityOfferSent     ActivityType = "OFFER_SENT"
	ActivityOfferAccepted ActivityType = "OFFER_ACCEPTED"
	ActivityOfferDeclined ActivityType = "OFFER_DECLINED"
	ActivityOfferUpdated  ActivityType = "OFFER_UPDATED"

	ActivityCompensationInitiated ActivityType = "COMPENSATION_INITIATED"
	ActivityCompensationSent      ActivityType = "COMPENSATION_SENT"
	ActivityCompensationApproved  ActivityType = "COMPENSATION_APPROVED"
	ActivityCompensationDeclined  ActivityType = "COMPENSATION_DECLINED"
	ActivityCompensationUpdated   ActivityType = "COMPENSATION_UPDATED"

	ActivityMeetingScheduled ActivityType = "COMPENSATION_MEETING_SCHEDULED"
	ActivityMeetingCompleted ActivityType = "COMPENSATION_MEETING_COMPLETED"
	ActivityMeetingCancelled ActivityType = "COMPENSATION_MEETING_CANCELLED"
	ActivityMeetingUpdated   ActivityType = "COMPENSATION_MEETING_UPDATED"

	ActivityCommentAdded ActivityType = "COMMENT_ADDED"
)

// Activity is one append-only audit row attached to an application
type Activity struct {
	ID              uuid.UUID         `json:"id"`
	ApplicationID   uuid.UUID         `json:"application_id"`
	Type            ActivityType      `json:"type"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	PerformedBy     uuid.UUID         `json:"performed_by"`
	PerformedByName string            `json:"performed_by_name"`
	Stage           Stage             `json:"stage"`
	SubStage        SubStage          `json:"sub_stage"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Actor identifies the authenticated user performing an operation
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// IsEmployer reports whether the actor acts for a hiring company.
func (a Actor) IsEmployer() bool {
	return a.Role == RoleEmployer
}

// Comment is a free-text note pinned to an application at its current stage
type Comment struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	AuthorID      uuid.UUID `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Stage         Stage     `json:"stage"`
	SubStage      SubStage  `json:"sub_stage"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// AddCommentRequest is the body of POST /ats/applications/{id}/comments
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}
