package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

const defaultInterviewMinutes = 60

// normalizeOnline fills in video defaults for an online meeting. In-app video gets a
// room id; external video needs a link.
func (s *Service) normalizeOnline(video *types.VideoType, link, room *string) error {
	if *video == "" {
		*video = types.VideoExternal
	}
	if *video == types.VideoInApp {
		if *room == "" {
			*room = s.newID().String()
		}
		return nil
	}
	*room = ""
	if strings.TrimSpace(*link) == "" {
		return types.Invalid("meeting_link", "is required for online meetings unless video is in-app")
	}
	return nil
}

func (s *Service) normalizeInterviewVenue(iv *types.Interview) error {
	switch iv.Type {
	case types.InterviewOnline:
		return s.normalizeOnline(&iv.VideoType, &iv.MeetingLink, &iv.WebRTCRoomID)
	case types.InterviewOffline:
		if strings.TrimSpace(iv.Location) == "" {
			return types.Invalid("location", "is required for offline interviews")
		}
		iv.VideoType, iv.WebRTCRoomID = "", ""
	}
	return nil
}

// loadInterview fetches an interview and the scope of its application.
func loadInterview(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID, action string) (*types.Interview, scope, error) {
	iv, err := repo.GetInterview(ctx, id)
	if err != nil {
		return nil, scope{}, err
	}
	if iv == nil {
		return nil, scope{}, types.NotFound("interview", id)
	}
	sc, err := loadEmployerScope(ctx, repo, actor, iv.ApplicationID, action)
	if err != nil {
		return nil, scope{}, err
	}
	return iv, sc, nil
}

func requireScheduled(status types.MeetingStatus, what string) error {
	if status.IsTerminal() {
		return types.Invalid("status", fmt.Sprintf("%s is already %s", what, status))
	}
	return nil
}

// ScheduleInterview creates a scheduled interview and emails the candidate.
func (s *Service) ScheduleInterview(ctx context.Context, actor types.Actor, req types.ScheduleInterviewRequest) (*types.Interview, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	iv := &types.Interview{
		ID:              s.newID(),
		ApplicationID:   req.ApplicationID,
		Title:           strings.TrimSpace(req.Title),
		Type:            req.Type,
		ScheduledDate:   req.ScheduledDate.UTC(),
		DurationMinutes: req.DurationMinutes,
		Location:        strings.TrimSpace(req.Location),
		MeetingLink:     strings.TrimSpace(req.MeetingLink),
		VideoType:       req.VideoType,
		Status:          types.MeetingScheduled,
		CreatedBy:       actor.ID,
	}
	if iv.DurationMinutes == 0 {
		iv.DurationMinutes = defaultInterviewMinutes
	}
	if err := s.normalizeInterviewVenue(iv); err != nil {
		return nil, err
	}

	var sc scope
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, req.ApplicationID, "schedule interviews")
		if err != nil {
			return err
		}
		if err := ensureOpen(sc.app); err != nil {
			return err
		}
		if err := tx.CreateInterview(ctx, iv); err != nil {
			return err
		}
		if err := advance(ctx, tx, sc.app, types.StageInterview, types.SubStageScheduled); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.InterviewScheduled{Interview: iv})
	})
	if err != nil {
		return nil, err
	}

	s.notifyCandidate(ctx, sc, notify.TemplateInterviewScheduled, func(candidate string) any {
		return notify.InterviewScheduledData{
			CandidateName:   candidate,
			JobTitle:        sc.job.Title,
			Title:           iv.Title,
			Type:            string(iv.Type),
			ScheduledAt:     iv.ScheduledDate,
			DurationMinutes: iv.DurationMinutes,
			Location:        iv.Location,
			MeetingLink:     iv.MeetingLink,
		}
	})
	return iv, nil
}

// CompleteInterview marks a scheduled interview completed with optional rating and feedback.
// Completing an interview that is already completed or cancelled is a validation error.
func (s *Service) CompleteInterview(ctx context.Context, actor types.Actor, id uuid.UUID, req types.CompleteInterviewRequest) (*types.Interview, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	return s.mutateInterview(ctx, actor, id, "complete interviews", func(tx Repository, iv *types.Interview, sc scope) (activity.Event, error) {
		if err := requireScheduled(iv.Status, "interview"); err != nil {
			return nil, err
		}
		iv.Status = types.MeetingCompleted
		iv.Rating = req.Rating
		iv.Feedback = strings.TrimSpace(req.Feedback)
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageInterview, types.SubStageCompleted); err != nil {
			return nil, err
		}
		return activity.InterviewCompleted{Interview: iv}, nil
	})
}

// CancelInterview cancels a scheduled interview.
func (s *Service) CancelInterview(ctx context.Context, actor types.Actor, id uuid.UUID, req types.CancelRequest) (*types.Interview, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	return s.mutateInterview(ctx, actor, id, "cancel interviews", func(tx Repository, iv *types.Interview, sc scope) (activity.Event, error) {
		if err := requireScheduled(iv.Status, "interview"); err != nil {
			return nil, err
		}
		iv.Status = types.MeetingCancelled
		iv.CancelReason = strings.TrimSpace(req.Reason)
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.InterviewCancelled{Interview: iv}, nil
	})
}

// AddInterviewFeedback sets the rating and/or feedback without changing the status.
func (s *Service) AddInterviewFeedback(ctx context.Context, actor types.Actor, id uuid.UUID, req types.InterviewFeedbackRequest) (*types.Interview, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	if req.Rating == nil && req.Feedback == nil {
		return nil, types.Invalid("feedback", "rating or feedback is required")
	}
	return s.mutateInterview(ctx, actor, id, "review interviews", func(tx Repository, iv *types.Interview, sc scope) (activity.Event, error) {
		if iv.Status == types.MeetingCancelled {
			return nil, types.Invalid("status", "interview is cancelled")
		}
		if req.Rating != nil {
			iv.Rating = req.Rating
		}
		if req.Feedback != nil {
			iv.Feedback = strings.TrimSpace(*req.Feedback)
		}
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.InterviewFeedbackAdded{Interview: iv}, nil
	})
}

// UpdateInterviewDetails edits the title, time or venue of a scheduled interview.
func (s *Service) UpdateInterviewDetails(ctx context.Context, actor types.Actor, id uuid.UUID, patch types.InterviewDetailsPatch) (*types.Interview, error) {
	if err := types.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, types.Invalid("", "no changes supplied")
	}
	return s.mutateInterview(ctx, actor, id, "edit interviews", func(tx Repository, iv *types.Interview, sc scope) (activity.Event, error) {
		if err := requireScheduled(iv.Status, "interview"); err != nil {
			return nil, err
		}
		var fields []string
		if patch.Title != nil {
			iv.Title = strings.TrimSpace(*patch.Title)
			fields = append(fields, "title")
		}
		if patch.Type != nil {
			iv.Type = *patch.Type
			fields = append(fields, "type")
		}
		if patch.ScheduledDate != nil {
			iv.ScheduledDate = patch.ScheduledDate.UTC()
			fields = append(fields, "scheduled_date")
		}
		if patch.DurationMinutes != nil {
			iv.DurationMinutes = *patch.DurationMinutes
			fields = append(fields, "duration_minutes")
		}
		if patch.Location != nil {
			iv.Location = strings.TrimSpace(*patch.Location)
			fields = append(fields, "location")
		}
		if patch.MeetingLink != nil {
			iv.MeetingLink = strings.TrimSpace(*patch.MeetingLink)
			fields = append(fields, "meeting_link")
		}
		if err := s.normalizeInterviewVenue(iv); err != nil {
			return nil, err
		}
		if err := tx.UpdateInterview(ctx, iv); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.InterviewDetailsUpdated{Interview: iv, Fields: fields}, nil
	})
}

// UpdateInterview applies a partial update by classifying it into a single intent.
func (s *Service) UpdateInterview(ctx context.Context, actor types.Actor, id uuid.UUID, req types.UpdateInterviewRequest) (*types.Interview, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	intent, err := ClassifyInterviewUpdate(req)
	if err != nil {
		return nil, err
	}
	switch in := intent.(type) {
	case InterviewCompleteIntent:
		return s.CompleteInterview(ctx, actor, id, in.Request)
	case InterviewCancelIntent:
		return s.CancelInterview(ctx, actor, id, in.Request)
	case InterviewFeedbackIntent:
		return s.AddInterviewFeedback(ctx, actor, id, in.Request)
	case InterviewDetailsIntent:
		return s.UpdateInterviewDetails(ctx, actor, id, in.Patch)
	default:
		return nil, fmt.Errorf("unhandled interview update %T", intent)
	}
}

// ListInterviews returns an application's interviews.
func (s *Service) ListInterviews(ctx context.Context, actor types.Actor, applicationID uuid.UUID) ([]types.Interview, error) {
	if _, err := loadScope(ctx, s.store, actor, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListInterviews(ctx, applicationID)
}

type interviewMutation func(tx Repository, iv *types.Interview, sc scope) (activity.Event, error)

// mutateInterview loads the interview in a transaction, applies fn and records the
// event it returns.
func (s *Service) mutateInterview(ctx context.Context, actor types.Actor, id uuid.UUID, action string, fn interviewMutation) (*types.Interview, error) {
	var iv *types.Interview
	err := s.store.InTx(ctx, func(tx Repository) error {
		loaded, sc, err := loadInterview(ctx, tx, actor, id, action)
		if err != nil {
			return err
		}
		e, err := fn(tx, loaded, sc)
		if err != nil {
			return err
		}
		iv = loaded
		return s.record(ctx, tx, actor, sc.app, e)
	})
	if err != nil {
		return nil, err
	}
	return iv, nil
}
