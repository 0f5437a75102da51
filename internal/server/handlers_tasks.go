package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// handleAssignTask accepts a multipart form: application_id, title, description,
// due_date (RFC 3339) and an optional document file
func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.errorResponse(w, err)
		return
	}
	appID, err := formUUID(r, "application_id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	due, err := formTime(r, "due_date")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	doc, err := formFile(r, "document")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	req := types.AssignTaskRequest{
		ApplicationID: appID,
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		DueDate:       due,
	}
	task, err := s.svc.AssignTask(r.Context(), actor(r), req, doc)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	task, err := s.svc.UpdateTask(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.svc.DeleteTask(r.Context(), actor(r), id); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitTask accepts a multipart form with a file, a submission_link, or both
func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.errorResponse(w, err)
		return
	}
	file, err := formFile(r, "file")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	req := types.SubmitTaskRequest{
		SubmissionLink: r.FormValue("submission_link"),
		SubmissionNote: r.FormValue("submission_note"),
	}
	task, err := s.svc.SubmitTask(r.Context(), actor(r), id, req, file)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}

func (s *Server) handleStartTaskReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	task, err := s.svc.StartTaskReview(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.CompleteTaskRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	task, err := s.svc.CompleteTask(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	tasks, err := s.svc.ListTasks(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if tasks == nil {
		tasks = []types.TechnicalTask{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}
