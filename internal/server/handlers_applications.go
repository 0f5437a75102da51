package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// handleListMyApplications lists the calling seeker's applications
func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.svc.ListMyApplications(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if apps == nil {
		apps = []types.Application{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handleGetApplication returns the application with its interviews, tasks, offers and compensation
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	detail, err := s.svc.GetApplication(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, detail)
}

func (s *Server) handleRescoreApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.svc.RescoreApplication(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleMoveToStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.MoveStageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.svc.MoveToStage(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleUpdateSubStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.UpdateSubStageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.svc.UpdateSubStage(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.RejectRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	app, err := s.svc.RejectApplication(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

func (s *Server) handleNextStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	next, err := s.svc.NextStage(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, next)
}

// handleListActivities returns the application's audit trail, newest first
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	activities, err := s.svc.ListActivities(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if activities == nil {
		activities = []types.Activity{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"activities": activities, "count": len(activities)})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	comments, err := s.svc.ListComments(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if comments == nil {
		comments = []types.Comment{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"comments": comments, "count": len(comments)})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.AddCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	comment, err := s.svc.AddComment(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, comment)
}
