package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req types.ScheduleInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	iv, err := s.svc.ScheduleInterview(r.Context(), actor(r), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, iv)
}

// handleUpdateInterview accepts a partial update; the service decides whether it completes,
// cancels, records feedback or edits details
func (s *Server) handleUpdateInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.UpdateInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	iv, err := s.svc.UpdateInterview(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.CompleteInterviewRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	iv, err := s.svc.CompleteInterview(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleCancelInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.CancelRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	iv, err := s.svc.CancelInterview(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.InterviewFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	iv, err := s.svc.AddInterviewFeedback(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	interviews, err := s.svc.ListInterviews(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if interviews == nil {
		interviews = []types.Interview{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"interviews": interviews, "count": len(interviews)})
}
