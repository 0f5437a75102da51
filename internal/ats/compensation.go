package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/activity"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

func loadCompensation(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID, action string) (*types.Compensation, scope, error) {
	comp, err := repo.GetCompensation(ctx, id)
	if err != nil {
		return nil, scope{}, err
	}
	if comp == nil {
		return nil, scope{}, types.NotFound("compensation", id)
	}
	sc, err := loadEmployerScope(ctx, repo, actor, comp.ApplicationID, action)
	if err != nil {
		return nil, scope{}, err
	}
	return comp, sc, nil
}

func compensationStatusError(comp *types.Compensation, action string) error {
	return types.Invalid("status", fmt.Sprintf("cannot %s a compensation that is %s", action, comp.Status))
}

// InitiateCompensation opens the compensation discussion of an application. An
// application has at most one compensation record.
func (s *Service) InitiateCompensation(ctx context.Context, actor types.Actor, req types.InitiateCompensationRequest) (*types.Compensation, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	comp := &types.Compensation{
		ID:                s.newID(),
		ApplicationID:     req.ApplicationID,
		CandidateExpected: req.CandidateExpected,
		CompanyProposed:   req.CompanyProposed,
		Currency:          strings.ToUpper(req.Currency),
		Benefits:          req.Benefits,
		Notes:             strings.TrimSpace(req.Notes),
		Status:            types.CompensationNotSent,
	}
	if comp.Benefits == nil {
		comp.Benefits = []string{}
	}

	err := s.store.InTx(ctx, func(tx Repository) error {
		sc, err := loadEmployerScope(ctx, tx, actor, req.ApplicationID, "manage compensation")
		if err != nil {
			return err
		}
		if err := ensureOpen(sc.app); err != nil {
			return err
		}
		existing, err := tx.GetCompensationByApplication(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &types.ErrConflict{Message: "compensation already initiated for this application"}
		}
		if err := tx.CreateCompensation(ctx, comp); err != nil {
			return err
		}
		if err := advance(ctx, tx, sc.app, types.StageCompensation, types.SubStageInitiated); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.CompensationInitiated{Compensation: comp})
	})
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// GetCompensation returns the compensation record of an application.
func (s *Service) GetCompensation(ctx context.Context, actor types.Actor, applicationID uuid.UUID) (*types.Compensation, error) {
	if _, err := loadScope(ctx, s.store, actor, applicationID); err != nil {
		return nil, err
	}
	comp, err := s.store.GetCompensationByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, types.NotFound("compensation", applicationID)
	}
	return comp, nil
}

// SendCompensationProposal marks the proposal as shared with the candidate.
func (s *Service) SendCompensationProposal(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Compensation, error) {
	return s.mutateCompensation(ctx, actor, id, func(tx Repository, comp *types.Compensation, sc scope) (activity.Event, error) {
		if comp.Status != types.CompensationNotSent {
			return nil, compensationStatusError(comp, "send")
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		comp.Status = types.CompensationSent
		if err := tx.UpdateCompensation(ctx, comp); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageCompensation, types.SubStageNegotiating); err != nil {
			return nil, err
		}
		return activity.CompensationSent{Compensation: comp}, nil
	})
}

// ApproveCompensation settles the compensation. Without an explicit final amount the
// company proposal is taken.
func (s *Service) ApproveCompensation(ctx context.Context, actor types.Actor, id uuid.UUID, req types.ApproveCompensationRequest) (*types.Compensation, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	return s.mutateCompensation(ctx, actor, id, func(tx Repository, comp *types.Compensation, sc scope) (activity.Event, error) {
		if comp.Status.IsTerminal() {
			return nil, compensationStatusError(comp, "approve")
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		comp.Status = types.CompensationAccepted
		comp.FinalAgreed = req.FinalAgreed
		if comp.FinalAgreed == nil {
			comp.FinalAgreed = comp.CompanyProposed
		}
		if err := tx.UpdateCompensation(ctx, comp); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageCompensation, types.SubStageApproved); err != nil {
			return nil, err
		}
		return activity.CompensationApproved{Compensation: comp}, nil
	})
}

// DeclineCompensation closes the compensation without agreement.
func (s *Service) DeclineCompensation(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.Compensation, error) {
	return s.mutateCompensation(ctx, actor, id, func(tx Repository, comp *types.Compensation, sc scope) (activity.Event, error) {
		if comp.Status.IsTerminal() {
			return nil, compensationStatusError(comp, "decline")
		}
		comp.Status = types.CompensationDeclined
		if err := tx.UpdateCompensation(ctx, comp); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.CompensationDeclined{Compensation: comp}, nil
	})
}

// UpdateCompensationDetails edits the figures of an unsettled compensation.
func (s *Service) UpdateCompensationDetails(ctx context.Context, actor types.Actor, id uuid.UUID, patch types.CompensationDetailsPatch) (*types.Compensation, error) {
	if err := types.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, types.Invalid("", "no changes supplied")
	}
	return s.mutateCompensation(ctx, actor, id, func(tx Repository, comp *types.Compensation, sc scope) (activity.Event, error) {
		if comp.Status.IsTerminal() {
			return nil, compensationStatusError(comp, "edit")
		}
		var fields []string
		if patch.CandidateExpected != nil {
			comp.CandidateExpected = patch.CandidateExpected
			fields = append(fields, "candidate_expected")
		}
		if patch.CompanyProposed != nil {
			comp.CompanyProposed = patch.CompanyProposed
			fields = append(fields, "company_proposed")
		}
		if patch.Currency != nil {
			comp.Currency = strings.ToUpper(*patch.Currency)
			fields = append(fields, "currency")
		}
		if patch.Benefits != nil {
			comp.Benefits = patch.Benefits
			fields = append(fields, "benefits")
		}
		if patch.Notes != nil {
			comp.Notes = strings.TrimSpace(*patch.Notes)
			fields = append(fields, "notes")
		}
		if err := tx.UpdateCompensation(ctx, comp); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.CompensationDetailsUpdated{Compensation: comp, Fields: fields}, nil
	})
}

type compensationMutation func(tx Repository, comp *types.Compensation, sc scope) (activity.Event, error)

func (s *Service) mutateCompensation(ctx context.Context, actor types.Actor, id uuid.UUID, fn compensationMutation) (*types.Compensation, error) {
	var comp *types.Compensation
	err := s.store.InTx(ctx, func(tx Repository) error {
		loaded, sc, err := loadCompensation(ctx, tx, actor, id, "manage compensation")
		if err != nil {
			return err
		}
		e, err := fn(tx, loaded, sc)
		if err != nil {
			return err
		}
		comp = loaded
		return s.record(ctx, tx, actor, sc.app, e)
	})
	if err != nil {
		return nil, err
	}
	return comp, nil
}
