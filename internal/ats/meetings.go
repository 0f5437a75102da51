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

func (s *Service) normalizeMeetingVenue(m *types.CompensationMeeting) error {
	switch m.Mode {
	case types.MeetingOnline:
		return s.normalizeOnline(&m.VideoType, &m.MeetingLink, &m.WebRTCRoomID)
	case types.MeetingInPerson:
		if strings.TrimSpace(m.Location) == "" {
			return types.Invalid("location", "is required for in-person meetings")
		}
	}
	if m.Mode != types.MeetingOnline {
		m.VideoType, m.WebRTCRoomID = "", ""
	}
	return nil
}

func loadMeeting(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID) (*types.CompensationMeeting, scope, error) {
	m, err := repo.GetMeeting(ctx, id)
	if err != nil {
		return nil, scope{}, err
	}
	if m == nil {
		return nil, scope{}, types.NotFound("compensation meeting", id)
	}
	sc, err := loadEmployerScope(ctx, repo, actor, m.ApplicationID, "manage compensation meetings")
	if err != nil {
		return nil, scope{}, err
	}
	return m, sc, nil
}

// ScheduleCompensationMeeting books a compensation discussion and emails the candidate.
func (s *Service) ScheduleCompensationMeeting(ctx context.Context, actor types.Actor, req types.ScheduleMeetingRequest) (*types.CompensationMeeting, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	meeting := &types.CompensationMeeting{
		ID:            s.newID(),
		ApplicationID: req.ApplicationID,
		Mode:          req.Mode,
		ScheduledDate: req.ScheduledDate.UTC(),
		Location:      strings.TrimSpace(req.Location),
		MeetingLink:   strings.TrimSpace(req.MeetingLink),
		VideoType:     req.VideoType,
		Status:        types.MeetingScheduled,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := s.normalizeMeetingVenue(meeting); err != nil {
		return nil, err
	}

	var sc scope
	err := s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, req.ApplicationID, "schedule compensation meetings")
		if err != nil {
			return err
		}
		if err := ensureOpen(sc.app); err != nil {
			return err
		}
		if err := tx.CreateMeeting(ctx, meeting); err != nil {
			return err
		}
		if err := advance(ctx, tx, sc.app, types.StageCompensation, types.SubStageNegotiating); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.MeetingScheduled{Meeting: meeting})
	})
	if err != nil {
		return nil, err
	}

	s.notifyCandidate(ctx, sc, notify.TemplateCompensationMeetingScheduled, func(candidate string) any {
		return notify.MeetingScheduledData{
			CandidateName: candidate,
			JobTitle:      sc.job.Title,
			Mode:          string(meeting.Mode),
			ScheduledAt:   meeting.ScheduledDate,
			Location:      meeting.Location,
			MeetingLink:   meeting.MeetingLink,
			Notes:         meeting.Notes,
		}
	})
	return meeting, nil
}

// CompleteMeeting marks a scheduled meeting as held.
func (s *Service) CompleteMeeting(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.CompensationMeeting, error) {
	return s.mutateMeeting(ctx, actor, id, func(tx Repository, m *types.CompensationMeeting, sc scope) (activity.Event, error) {
		if err := requireScheduled(m.Status, "meeting"); err != nil {
			return nil, err
		}
		m.Status = types.MeetingCompleted
		if err := tx.UpdateMeeting(ctx, m); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.MeetingCompleted{Meeting: m}, nil
	})
}

// CancelMeeting cancels a scheduled meeting.
func (s *Service) CancelMeeting(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.CompensationMeeting, error) {
	return s.mutateMeeting(ctx, actor, id, func(tx Repository, m *types.CompensationMeeting, sc scope) (activity.Event, error) {
		if err := requireScheduled(m.Status, "meeting"); err != nil {
			return nil, err
		}
		m.Status = types.MeetingCancelled
		if err := tx.UpdateMeeting(ctx, m); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.MeetingCancelled{Meeting: m}, nil
	})
}

// UpdateMeetingDetails edits the time, format or notes of a scheduled meeting.
func (s *Service) UpdateMeetingDetails(ctx context.Context, actor types.Actor, id uuid.UUID, patch types.MeetingDetailsPatch) (*types.CompensationMeeting, error) {
	if err := types.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, types.Invalid("", "no changes supplied")
	}
	return s.mutateMeeting(ctx, actor, id, func(tx Repository, m *types.CompensationMeeting, sc scope) (activity.Event, error) {
		if err := requireScheduled(m.Status, "meeting"); err != nil {
			return nil, err
		}
		var fields []string
		if patch.Mode != nil {
			m.Mode = *patch.Mode
			fields = append(fields, "mode")
		}
		if patch.ScheduledDate != nil {
			m.ScheduledDate = patch.ScheduledDate.UTC()
			fields = append(fields, "scheduled_date")
		}
		if patch.Location != nil {
			m.Location = strings.TrimSpace(*patch.Location)
			fields = append(fields, "location")
		}
		if patch.MeetingLink != nil {
			m.MeetingLink = strings.TrimSpace(*patch.MeetingLink)
			fields = append(fields, "meeting_link")
		}
		if patch.Notes != nil {
			m.Notes = strings.TrimSpace(*patch.Notes)
			fields = append(fields, "notes")
		}
		if err := s.normalizeMeetingVenue(m); err != nil {
			return nil, err
		}
		if err := tx.UpdateMeeting(ctx, m); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.MeetingDetailsUpdated{Meeting: m, Fields: fields}, nil
	})
}

// UpdateMeeting applies a partial update by classifying it into a single intent.
func (s *Service) UpdateMeeting(ctx context.Context, actor types.Actor, id uuid.UUID, req types.UpdateMeetingRequest) (*types.CompensationMeeting, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	intent, err := ClassifyMeetingUpdate(req)
	if err != nil {
		return nil, err
	}
	switch in := intent.(type) {
	case MeetingCompleteIntent:
		return s.CompleteMeeting(ctx, actor, id)
	case MeetingCancelIntent:
		return s.CancelMeeting(ctx, actor, id)
	case MeetingDetailsIntent:
		return s.UpdateMeetingDetails(ctx, actor, id, in.Patch)
	default:
		return nil, fmt.Errorf("unhandled meeting update %T", intent)
	}
}

// ListMeetings returns an application's compensation meetings.
func (s *Service) ListMeetings(ctx context.Context, actor types.Actor, applicationID uuid.UUID) ([]types.CompensationMeeting, error) {
	if _, err := loadScope(ctx, s.store, actor, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListMeetings(ctx, applicationID)
}

type meetingMutation func(tx Repository, m *types.CompensationMeeting, sc scope) (activity.Event, error)

func (s *Service) mutateMeeting(ctx context.Context, actor types.Actor, id uuid.UUID, fn meetingMutation) (*types.CompensationMeeting, error) {
	var meeting *types.CompensationMeeting
	err := s.store.InTx(ctx, func(tx Repository) error {
		loaded, sc, err := loadMeeting(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		e, err := fn(tx, loaded, sc)
		if err != nil {
			return err
		}
		meeting = loaded
		return s.record(ctx, tx, actor, sc.app, e)
	})
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
