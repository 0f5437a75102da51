package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// handleCreateJob creates a posting owned by the calling employer
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	job, err := s.svc.CreateJob(r.Context(), actor(r), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists the calling employer's postings
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.svc.ListJobs(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if jobs == nil {
		jobs = []types.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	job, err := s.svc.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJobStages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.UpdateJobStagesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	job, err := s.svc.UpdateJobStages(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	job, err := s.svc.CloseJob(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleKanban returns the job's applications grouped by stage
func (s *Server) handleKanban(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	board, err := s.svc.Kanban(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, board)
}

// handleSubmitApplication accepts a multipart form with a resume file and an optional cover_letter field
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.errorResponse(w, err)
		return
	}
	resume, err := formFile(r, "resume")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if resume == nil {
		s.errorResponse(w, types.Invalid("resume", "a resume file is required"))
		return
	}

	app, err := s.svc.SubmitApplication(r.Context(), actor(r), jobID, r.FormValue("cover_letter"), *resume)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}
