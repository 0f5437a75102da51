package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const interviewColumns = `id, application_id, title, type, scheduled_date, duration_minutes, location, meeting_link,
	video_type, webrtc_room_id, status, rating, feedback, cancel_reason, created_by, created_at, updated_at`

func scanInterview(row interface{ Scan(...any) error }) (*types.Interview, error) {
	var i types.Interview
	err := row.Scan(&i.ID, &i.ApplicationID, &i.Title, &i.Type, &i.ScheduledDate, &i.DurationMinutes,
		&i.Location, &i.MeetingLink, &i.VideoType, &i.WebRTCRoomID, &i.Status, &i.Rating, &i.Feedback,
		&i.CancelReason, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateInterview inserts an interview
func (db *DB) CreateInterview(ctx context.Context, i *types.Interview) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_interviews (id, application_id, title, type, scheduled_date, duration_minutes,
		 location, meeting_link, video_type, webrtc_room_id, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at, updated_at`,
		i.ID, i.ApplicationID, i.Title, i.Type, i.ScheduledDate, i.DurationMinutes, i.Location,
		i.MeetingLink, i.VideoType, i.WebRTCRoomID, i.Status, i.CreatedBy,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// GetInterview retrieves an interview by ID, returning nil when it does not exist
func (db *DB) GetInterview(ctx context.Context, id uuid.UUID) (*types.Interview, error) {
	i, err := scanInterview(db.q.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM ats_interviews WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	return i, nil
}

// ListInterviews returns an application's interviews in schedule order
func (db *DB) ListInterviews(ctx context.Context, applicationID uuid.UUID) ([]types.Interview, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+interviewColumns+` FROM ats_interviews WHERE application_id = $1 ORDER BY scheduled_date`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	interviews := []types.Interview{}
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *i)
	}
	return interviews, rows.Err()
}

// UpdateInterview stores every mutable interview field
func (db *DB) UpdateInterview(ctx context.Context, i *types.Interview) error {
	err := db.q.QueryRow(ctx,
		`UPDATE ats_interviews
		 SET title = $2, type = $3, scheduled_date = $4, duration_minutes = $5, location = $6,
		     meeting_link = $7, video_type = $8, webrtc_room_id = $9, status = $10, rating = $11,
		     feedback = $12, cancel_reason = $13, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		i.ID, i.Title, i.Type, i.ScheduledDate, i.DurationMinutes, i.Location, i.MeetingLink,
		i.VideoType, i.WebRTCRoomID, i.Status, i.Rating, i.Feedback, i.CancelReason,
	).Scan(&i.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("interview", i.ID)
		}
		return fmt.Errorf("failed to update interview: %w", err)
	}
	return nil
}
