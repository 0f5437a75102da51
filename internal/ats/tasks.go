package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

func loadTask(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID) (*types.TechnicalTask, scope, error) {
	task, err := repo.GetTask(ctx, id)
	if err != nil {
		return nil, scope{}, err
	}
	if task == nil {
		return nil, scope{}, types.NotFound("technical task", id)
	}
	sc, err := loadScope(ctx, repo, actor, task.ApplicationID)
	if err != nil {
		return nil, scope{}, err
	}
	return task, sc, nil
}

func taskStatusError(task *types.TechnicalTask, action string) error {
	return types.Invalid("status", fmt.Sprintf("cannot %s a task that is %s", action, task.Status))
}

// AssignTask gives the candidate a technical task, optionally with a brief document,
// and emails them.
func (s *Service) AssignTask(ctx context.Context, actor types.Actor, req types.AssignTaskRequest, document *storage.File) (*types.TechnicalTask, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	sc, err := loadEmployerScope(ctx, s.store, actor, req.ApplicationID, "assign tasks")
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(sc.app); err != nil {
		return nil, err
	}

	task := &types.TechnicalTask{
		ID:            s.newID(),
		ApplicationID: req.ApplicationID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		DueDate:       req.DueDate,
		Status:        types.TaskAssigned,
	}
	if document != nil {
		ref, err := s.uploader.UploadTaskDocument(ctx, req.ApplicationID, *document)
		if err != nil {
			return nil, err
		}
		task.Document = ref
	}

	err = s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, req.ApplicationID, "assign tasks")
		if err != nil {
			return err
		}
		if err := ensureOpen(sc.app); err != nil {
			return err
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		if err := advance(ctx, tx, sc.app, types.StageTechnicalTask, types.SubStageAssigned); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.TaskAssigned{Task: task})
	})
	if err != nil {
		return nil, err
	}

	s.notifyCandidate(ctx, sc, notify.TemplateTaskAssigned, func(candidate string) any {
		return notify.TaskAssignedData{
			CandidateName: candidate,
			JobTitle:      sc.job.Title,
			Title:         task.Title,
			Description:   task.Description,
			DueDate:       task.DueDate,
		}
	})
	return task, nil
}

// SubmitTask records the candidate's solution as an uploaded file, a link, or both.
func (s *Service) SubmitTask(ctx context.Context, actor types.Actor, id uuid.UUID, req types.SubmitTaskRequest, file *storage.File) (*types.TechnicalTask, error) {
	if err := requireSeeker(actor, "submit tasks"); err != nil {
		return nil, err
	}
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	if file == nil && strings.TrimSpace(req.SubmissionLink) == "" {
		return nil, types.Invalid("submission", "a file or a link is required")
	}

	task, sc, err := loadTask(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	if task.Status != types.TaskAssigned {
		return nil, taskStatusError(task, "submit")
	}
	if err := ensureOpen(sc.app); err != nil {
		return nil, err
	}

	var upload types.FileRef
	if file != nil {
		upload, err = s.uploader.UploadTaskSubmission(ctx, task.ApplicationID, *file)
		if err != nil {
			return nil, err
		}
	}

	return s.mutateTask(ctx, actor, id, func(tx Repository, task *types.TechnicalTask, sc scope) (activity.Event, error) {
		if task.Status != types.TaskAssigned {
			return nil, taskStatusError(task, "submit")
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		now := s.timestamp()
		task.Status = types.TaskSubmitted
		task.Submission = upload
		task.SubmissionLink = strings.TrimSpace(req.SubmissionLink)
		task.SubmissionNote = strings.TrimSpace(req.SubmissionNote)
		task.SubmittedAt = &now
		if err := tx.UpdateTask(ctx, task); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageTechnicalTask, types.SubStageSubmitted); err != nil {
			return nil, err
		}
		return activity.TaskSubmitted{Task: task}, nil
	})
}

// StartTaskReview moves a submitted task under review.
func (s *Service) StartTaskReview(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.TechnicalTask, error) {
	if err := requireEmployer(actor, "review tasks"); err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, actor, id, func(tx Repository, task *types.TechnicalTask, sc scope) (activity.Event, error) {
		if task.Status != types.TaskSubmitted {
			return nil, taskStatusError(task, "review")
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		task.Status = types.TaskUnderReview
		if err := tx.UpdateTask(ctx, task); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageTechnicalTask, types.SubStageUnderReview); err != nil {
			return nil, err
		}
		return activity.TaskReviewStarted{Task: task}, nil
	})
}

// CompleteTask closes a submitted or reviewed task with feedback and an optional rating.
func (s *Service) CompleteTask(ctx context.Context, actor types.Actor, id uuid.UUID, req types.CompleteTaskRequest) (*types.TechnicalTask, error) {
	if err := requireEmployer(actor, "complete tasks"); err != nil {
		return nil, err
	}
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, actor, id, func(tx Repository, task *types.TechnicalTask, sc scope) (activity.Event, error) {
		if task.Status != types.TaskSubmitted && task.Status != types.TaskUnderReview {
			return nil, taskStatusError(task, "complete")
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		task.Status = types.TaskCompleted
		task.Feedback = strings.TrimSpace(req.Feedback)
		task.Rating = req.Rating
		if err := tx.UpdateTask(ctx, task); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageTechnicalTask, types.SubStageCompleted); err != nil {
			return nil, err
		}
		return activity.TaskCompleted{Task: task}, nil
	})
}

// UpdateTaskDetails edits an open task. Feedback and rating may be adjusted alongside.
func (s *Service) UpdateTaskDetails(ctx context.Context, actor types.Actor, id uuid.UUID, patch types.TaskDetailsPatch, feedback *string, rating *int) (*types.TechnicalTask, error) {
	if err := requireEmployer(actor, "edit tasks"); err != nil {
		return nil, err
	}
	if err := types.Validate(&patch); err != nil {
		return nil, err
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, types.Invalid("rating", "must be between 1 and 5")
	}
	if patch.IsEmpty() && feedback == nil && rating == nil {
		return nil, types.Invalid("", "no changes supplied")
	}
	return s.mutateTask(ctx, actor, id, func(tx Repository, task *types.TechnicalTask, sc scope) (activity.Event, error) {
		if task.Status == types.TaskCompleted && !patch.IsEmpty() {
			return nil, taskStatusError(task, "edit")
		}
		var fields []string
		if patch.Title != nil {
			task.Title = strings.TrimSpace(*patch.Title)
			fields = append(fields, "title")
		}
		if patch.Description != nil {
			task.Description = *patch.Description
			fields = append(fields, "description")
		}
		if patch.DueDate != nil {
			due := patch.DueDate.UTC()
			task.DueDate = &due
			fields = append(fields, "due_date")
		}
		if feedback != nil {
			task.Feedback = strings.TrimSpace(*feedback)
			fields = append(fields, "feedback")
		}
		if rating != nil {
			task.Rating = rating
			fields = append(fields, "rating")
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.TaskDetailsUpdated{Task: task, Fields: fields}, nil
	})
}

// DeleteTask removes a task the candidate has not submitted yet. The deletion is
// kept in the activity log.
func (s *Service) DeleteTask(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if err := requireEmployer(actor, "delete tasks"); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx Repository) error {
		task, sc, err := loadTask(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if task.Status != types.TaskAssigned {
			return taskStatusError(task, "delete")
		}
		if err := tx.DeleteTask(ctx, id); err != nil {
			return err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.TaskDeleted{Task: task})
	})
}

// UpdateTask applies a partial update by classifying it into a single intent.
func (s *Service) UpdateTask(ctx context.Context, actor types.Actor, id uuid.UUID, req types.UpdateTaskRequest) (*types.TechnicalTask, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	intent, err := ClassifyTaskUpdate(req)
	if err != nil {
		return nil, err
	}
	switch in := intent.(type) {
	case TaskReviewIntent:
		return s.StartTaskReview(ctx, actor, id)
	case TaskCompleteIntent:
		return s.CompleteTask(ctx, actor, id, in.Request)
	case TaskDetailsIntent:
		return s.UpdateTaskDetails(ctx, actor, id, in.Patch, in.Feedback, in.Rating)
	default:
		return nil, fmt.Errorf("unhandled task update %T", intent)
	}
}

// ListTasks returns an application's technical tasks.
func (s *Service) ListTasks(ctx context.Context, actor types.Actor, applicationID uuid.UUID) ([]types.TechnicalTask, error) {
	if _, err := loadScope(ctx, s.store, actor, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, applicationID)
}

type taskMutation func(tx Repository, task *types.TechnicalTask, sc scope) (activity.Event, error)

func (s *Service) mutateTask(ctx context.Context, actor types.Actor, id uuid.UUID, fn taskMutation) (*types.TechnicalTask, error) {
	var task *types.TechnicalTask
	err := s.store.InTx(ctx, func(tx Repository) error {
		loaded, sc, err := loadTask(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		e, err := fn(tx, loaded, sc)
		if err != nil {
			return err
		}
		task = loaded
		return s.record(ctx, tx, actor, sc.app, e)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
