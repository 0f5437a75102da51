package ats

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// AddComment attaches an internal note to an application, stamped with its current stage.
func (s *Service) AddComment(ctx context.Context, actor types.Actor, applicationID uuid.UUID, req types.AddCommentRequest) (*types.Comment, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	var comment *types.Comment
	err := s.store.InTx(ctx, func(tx Repository) error {
		sc, err := loadEmployerScope(ctx, tx, actor, applicationID, "comment on applications")
		if err != nil {
			return err
		}
		comment = &types.Comment{
			ID:            s.newID(),
			ApplicationID: applicationID,
			AuthorID:      actor.ID,
			AuthorName:    actor.Name,
			Stage:         sc.app.Stage,
			SubStage:      sc.app.SubStage,
			Text:          req.Text,
		}
		if err := tx.CreateComment(ctx, comment); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.CommentAdded{Comment: comment})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns an application's internal notes, oldest first.
func (s *Service) ListComments(ctx context.Context, actor types.Actor, applicationID uuid.UUID) ([]types.Comment, error) {
	if _, err := loadEmployerScope(ctx, s.store, actor, applicationID, "read comments"); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, applicationID)
}
