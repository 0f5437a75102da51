package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

func (s *Server) handleInitiateCompensation(w http.ResponseWriter, r *http.Request) {
	var req types.InitiateCompensationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.InitiateCompensation(r.Context(), actor(r), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, comp)
}

func (s *Server) handleGetCompensation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.GetCompensation(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, comp)
}

func (s *Server) handleUpdateCompensation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var patch types.CompensationDetailsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.UpdateCompensationDetails(r.Context(), actor(r), id, patch)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, comp)
}

func (s *Server) handleSendCompensation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.SendCompensationProposal(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, comp)
}

func (s *Server) handleApproveCompensation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.ApproveCompensationRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.ApproveCompensation(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, comp)
}

func (s *Server) handleDeclineCompensation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	comp, err := s.svc.DeclineCompensation(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, comp)
}

func (s *Server) handleScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	var req types.ScheduleMeetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	m, err := s.svc.ScheduleCompensationMeeting(r.Context(), actor(r), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.UpdateMeetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	m, err := s.svc.UpdateMeeting(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleCompleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	m, err := s.svc.CompleteMeeting(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleCancelMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	m, err := s.svc.CancelMeeting(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, m)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	meetings, err := s.svc.ListMeetings(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if meetings == nil {
		meetings = []types.CompensationMeeting{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"meetings": meetings, "count": len(meetings)})
}
