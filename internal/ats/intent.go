package ats

import (
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// InterviewUpdate is what a PATCH on an interview asks for. It is decided once from the
// payload and dispatched to the matching operation.
type InterviewUpdate interface {
	interviewUpdate()
}

type InterviewCompleteIntent struct{ Request types.CompleteInterviewRequest }
type InterviewCancelIntent struct{ Request types.CancelRequest }
type InterviewFeedbackIntent struct{ Request types.InterviewFeedbackRequest }
type InterviewDetailsIntent struct{ Patch types.InterviewDetailsPatch }

func (InterviewCompleteIntent) interviewUpdate() {}
func (InterviewCancelIntent) interviewUpdate()   {}
func (InterviewFeedbackIntent) interviewUpdate() {}
func (InterviewDetailsIntent) interviewUpdate()  {}

// ClassifyInterviewUpdate maps a partial interview update onto one intent. A status of
// completed or cancelled wins; rating or feedback alone is a feedback edit; anything else
// is a detail edit. Mixing a status change or feedback with detail fields is rejected.
func ClassifyInterviewUpdate(req types.UpdateInterviewRequest) (InterviewUpdate, error) {
	hasFeedback := req.Rating != nil || req.Feedback != nil
	hasDetails := !req.InterviewDetailsPatch.IsEmpty()

	if req.Status != nil && *req.Status != types.MeetingScheduled {
		if hasDetails {
			return nil, types.Invalid("status", "status changes cannot be combined with detail edits")
		}
		switch *req.Status {
		case types.MeetingCompleted:
			complete := types.CompleteInterviewRequest{Rating: req.Rating}
			if req.Feedback != nil {
				complete.Feedback = *req.Feedback
			}
			return InterviewCompleteIntent{Request: complete}, nil
		case types.MeetingCancelled:
			if hasFeedback {
				return nil, types.Invalid("status", "a cancelled interview cannot carry feedback")
			}
			cancel := types.CancelRequest{}
			if req.CancelReason != nil {
				cancel.Reason = *req.CancelReason
			}
			return InterviewCancelIntent{Request: cancel}, nil
		default:
			return nil, types.Invalid("status", "must be one of: scheduled completed cancelled")
		}
	}

	switch {
	case hasFeedback && hasDetails:
		return nil, types.Invalid("feedback", "send feedback and detail changes separately")
	case hasFeedback:
		return InterviewFeedbackIntent{Request: types.InterviewFeedbackRequest{Rating: req.Rating, Feedback: req.Feedback}}, nil
	case hasDetails:
		return InterviewDetailsIntent{Patch: req.InterviewDetailsPatch}, nil
	default:
		return nil, types.Invalid("", "no changes supplied")
	}
}

// TaskUpdate is what a PATCH on a technical task asks for.
type TaskUpdate interface {
	taskUpdate()
}

type TaskReviewIntent struct{}
type TaskCompleteIntent struct{ Request types.CompleteTaskRequest }
type TaskDetailsIntent struct {
	Patch    types.TaskDetailsPatch
	Feedback *string
	Rating   *int
}

func (TaskReviewIntent) taskUpdate()   {}
func (TaskCompleteIntent) taskUpdate() {}
func (TaskDetailsIntent) taskUpdate()  {}

// ClassifyTaskUpdate maps a partial task update onto one intent. Submissions carry files
// and go through their own operation, so a submitted status is rejected here.
func ClassifyTaskUpdate(req types.UpdateTaskRequest) (TaskUpdate, error) {
	hasDetails := !req.TaskDetailsPatch.IsEmpty()

	if req.Status != nil && *req.Status != types.TaskAssigned {
		if hasDetails {
			return nil, types.Invalid("status", "status changes cannot be combined with detail edits")
		}
		switch *req.Status {
		case types.TaskUnderReview:
			if req.Feedback != nil || req.Rating != nil {
				return nil, types.Invalid("status", "feedback is given when completing a task")
			}
			return TaskReviewIntent{}, nil
		case types.TaskCompleted:
			complete := types.CompleteTaskRequest{Rating: req.Rating}
			if req.Feedback != nil {
				complete.Feedback = *req.Feedback
			}
			return TaskCompleteIntent{Request: complete}, nil
		case types.TaskSubmitted:
			return nil, types.Invalid("status", "tasks are submitted by the candidate")
		default:
			return nil, types.Invalid("status", "must be one of: assigned submitted under_review completed")
		}
	}

	if !hasDetails && req.Feedback == nil && req.Rating == nil {
		return nil, types.Invalid("", "no changes supplied")
	}
	return TaskDetailsIntent{Patch: req.TaskDetailsPatch, Feedback: req.Feedback, Rating: req.Rating}, nil
}

// MeetingUpdate is what a PATCH on a compensation meeting asks for.
type MeetingUpdate interface {
	meetingUpdate()
}

type MeetingCompleteIntent struct{}
type MeetingCancelIntent struct{}
type MeetingDetailsIntent struct{ Patch types.MeetingDetailsPatch }

func (MeetingCompleteIntent) meetingUpdate() {}
func (MeetingCancelIntent) meetingUpdate()   {}
func (MeetingDetailsIntent) meetingUpdate()  {}

// ClassifyMeetingUpdate maps a partial meeting update onto one intent.
func ClassifyMeetingUpdate(req types.UpdateMeetingRequest) (MeetingUpdate, error) {
	hasDetails := !req.MeetingDetailsPatch.IsEmpty()

	if req.Status != nil && *req.Status != types.MeetingScheduled {
		if hasDetails {
			return nil, types.Invalid("status", "status changes cannot be combined with detail edits")
		}
		switch *req.Status {
		case types.MeetingCompleted:
			return MeetingCompleteIntent{}, nil
		case types.MeetingCancelled:
			return MeetingCancelIntent{}, nil
		default:
			return nil, types.Invalid("status", "must be one of: scheduled completed cancelled")
		}
	}
	if !hasDetails {
		return nil, types.Invalid("", "no changes supplied")
	}
	return MeetingDetailsIntent{Patch: req.MeetingDetailsPatch}, nil
}
