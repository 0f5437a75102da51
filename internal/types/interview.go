package types

import (
	"time"

	"github.com/google/uuid"
)

// InterviewType is the interview format
type InterviewType string

const (
	InterviewOnline  InterviewType = "online"
	InterviewOffline InterviewType = "offline"
)

// VideoType selects where an online meeting happens
type VideoType string

const (
	VideoExternal VideoType = "external"
	VideoInApp    VideoType = "in_app"
)

// MeetingStatus is shared by interviews and compensation meetings.
// Transitions are one-directional: scheduled -> completed | cancelled.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// IsTerminal reports whether no further status change is allowed.
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingCompleted || s == MeetingCancelled
}

// Interview is a scheduled interview round for an application
type Interview struct {
	ID              uuid.UUID     `json:"id"`
	ApplicationID   uuid.UUID     `json:"application_id"`
	Title           string        `json:"title"`
	Type            InterviewType `json:"type"`
	ScheduledDate   time.Time     `json:"scheduled_date"`
	DurationMinutes int           `json:"duration_minutes"`
	Location        string        `json:"location,omitempty"`
	MeetingLink     string        `json:"meeting_link,omitempty"`
	VideoType       VideoType     `json:"video_type,omitempty"`
	WebRTCRoomID    string        `json:"webrtc_room_id,omitempty"`
	Status          MeetingStatus `json:"status"`
	Rating          *int          `json:"rating,omitempty"`
	Feedback        string        `json:"feedback,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty"`
	CreatedBy       uuid.UUID     `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ScheduleInterviewRequest is the body of POST /ats/interviews
type ScheduleInterviewRequest struct {
	ApplicationID   uuid.UUID     `json:"application_id" validate:"required"`
	Title           string        `json:"title" validate:"required,max=200"`
	Type            InterviewType `json:"type" validate:"required,oneof=online offline"`
	ScheduledDate   time.Time     `json:"scheduled_date" validate:"required"`
	DurationMinutes int           `json:"duration_minutes,omitempty" validate:"omitempty,min=5,max=480"`
	Location        string        `json:"location,omitempty"`
	MeetingLink     string        `json:"meeting_link,omitempty" validate:"omitempty,url"`
	VideoType       VideoType     `json:"video_type,omitempty" validate:"omitempty,oneof=external in_app"`
}

// CompleteInterviewRequest is the body of POST /ats/interviews/{id}/complete
type CompleteInterviewRequest struct {
	Rating   *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback string `json:"feedback,omitempty" validate:"max=5000"`
}

// CancelRequest is the body of the cancel endpoints
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// InterviewFeedbackRequest is the body of POST /ats/interviews/{id}/feedback
type InterviewFeedbackRequest struct {
	Rating   *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=5000"`
}

// InterviewDetailsPatch carries the editable scheduling fields of an interview
type InterviewDetailsPatch struct {
	Title           *string        `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Type            *InterviewType `json:"type,omitempty" validate:"omitempty,oneof=online offline"`
	ScheduledDate   *time.Time     `json:"scheduled_date,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty" validate:"omitempty,min=5,max=480"`
	Location        *string        `json:"location,omitempty"`
	MeetingLink     *string        `json:"meeting_link,omitempty" validate:"omitempty,url"`
}

// IsEmpty reports whether the patch changes nothing.
func (p InterviewDetailsPatch) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.ScheduledDate == nil &&
		p.DurationMinutes == nil && p.Location == nil && p.MeetingLink == nil
}

// UpdateInterviewRequest is the body of PATCH /ats/interviews/{id}.
// It is classified into a single intent before anything is written.
type UpdateInterviewRequest struct {
	InterviewDetailsPatch
	Status       *MeetingStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	Rating       *int           `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback     *string        `json:"feedback,omitempty" validate:"omitempty,max=5000"`
	CancelReason *string        `json:"cancel_reason,omitempty" validate:"omitempty,max=1000"`
}

// MeetingMode is the format of a compensation meeting
type MeetingMode string

const (
	MeetingCall     MeetingMode = "call"
	MeetingOnline   MeetingMode = "online"
	MeetingInPerson MeetingMode = "in_person"
)

// CompensationMeeting is a scheduled compensation discussion
type CompensationMeeting struct {
	ID            uuid.UUID     `json:"id"`
	ApplicationID uuid.UUID     `json:"application_id"`
	Mode          MeetingMode   `json:"mode"`
	ScheduledDate time.Time     `json:"scheduled_date"`
	Location      string        `json:"location,omitempty"`
	MeetingLink   string        `json:"meeting_link,omitempty"`
	VideoType     VideoType     `json:"video_type,omitempty"`
	WebRTCRoomID  string        `json:"webrtc_room_id,omitempty"`
	Status        MeetingStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ScheduleMeetingRequest is the body of POST /ats/compensation-meetings
type ScheduleMeetingRequest struct {
	ApplicationID uuid.UUID   `json:"application_id" validate:"required"`
	Mode          MeetingMode `json:"mode" validate:"required,oneof=call online in_person"`
	ScheduledDate time.Time   `json:"scheduled_date" validate:"required"`
	Location      string      `json:"location,omitempty"`
	MeetingLink   string      `json:"meeting_link,omitempty" validate:"omitempty,url"`
	VideoType     VideoType   `json:"video_type,omitempty" validate:"omitempty,oneof=external in_app"`
	Notes         string      `json:"notes,omitempty" validate:"max=5000"`
}

// MeetingDetailsPatch carries the editable fields of a compensation meeting
type MeetingDetailsPatch struct {
	Mode          *MeetingMode `json:"mode,omitempty" validate:"omitempty,oneof=call online in_person"`
	ScheduledDate *time.Time   `json:"scheduled_date,omitempty"`
	Location      *string      `json:"location,omitempty"`
	MeetingLink   *string      `json:"meeting_link,omitempty" validate:"omitempty,url"`
	Notes         *string      `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// IsEmpty reports whether the patch changes nothing.
func (p MeetingDetailsPatch) IsEmpty() bool {
	return p.Mode == nil && p.ScheduledDate == nil && p.Location == nil &&
		p.MeetingLink == nil && p.Notes == nil
}

// UpdateMeetingRequest is the body of PATCH /ats/compensation-meetings/{id}
type UpdateMeetingRequest struct {
	MeetingDetailsPatch
	Status *MeetingStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
}
