package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const meetingColumns = `id, application_id, mode, scheduled_date, location, meeting_link, video_type,
	webrtc_room_id, status, notes, created_at, updated_at`

func scanMeeting(row interface{ Scan(...any) error }) (*types.CompensationMeeting, error) {
	var m types.CompensationMeeting
	err := row.Scan(&m.ID, &m.ApplicationID, &m.Mode, &m.ScheduledDate, &m.Location, &m.MeetingLink,
		&m.VideoType, &m.WebRTCRoomID, &m.Status, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMeeting inserts a compensation meeting
func (db *DB) CreateMeeting(ctx context.Context, m *types.CompensationMeeting) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_compensation_meetings (id, application_id, mode, scheduled_date, location,
		 meeting_link, video_type, webrtc_room_id, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		m.ID, m.ApplicationID, m.Mode, m.ScheduledDate, m.Location, m.MeetingLink, m.VideoType,
		m.WebRTCRoomID, m.Status, m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create compensation meeting: %w", err)
	}
	return nil
}

// GetMeeting retrieves a compensation meeting by ID, returning nil when it does not exist
func (db *DB) GetMeeting(ctx context.Context, id uuid.UUID) (*types.CompensationMeeting, error) {
	m, err := scanMeeting(db.q.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM ats_compensation_meetings WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compensation meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns an application's compensation meetings in schedule order
func (db *DB) ListMeetings(ctx context.Context, applicationID uuid.UUID) ([]types.CompensationMeeting, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+meetingColumns+` FROM ats_compensation_meetings WHERE application_id = $1 ORDER BY scheduled_date`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation meetings: %w", err)
	}
	defer rows.Close()

	meetings := []types.CompensationMeeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensation meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

// UpdateMeeting stores every mutable meeting field
func (db *DB) UpdateMeeting(ctx context.Context, m *types.CompensationMeeting) error {
	err := db.q.QueryRow(ctx,
		`UPDATE ats_compensation_meetings
		 SET mode = $2, scheduled_date = $3, location = $4, meeting_link = $5, video_type = $6,
		     webrtc_room_id = $7, status = $8, notes = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		m.ID, m.Mode, m.ScheduledDate, m.Location, m.MeetingLink, m.VideoType, m.WebRTCRoomID,
		m.Status, m.Notes,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("compensation meeting", m.ID)
		}
		return fmt.Errorf("failed to update compensation meeting: %w", err)
	}
	return nil
}
