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

func loadOffer(ctx context.Context, repo Repository, actor types.Actor, id uuid.UUID) (*types.OfferDocument, scope, error) {
	offer, err := repo.GetOffer(ctx, id)
	if err != nil {
		return nil, scope{}, err
	}
	if offer == nil {
		return nil, scope{}, types.NotFound("offer", id)
	}
	sc, err := loadScope(ctx, repo, actor, offer.ApplicationID)
	if err != nil {
		return nil, scope{}, err
	}
	return offer, sc, nil
}

func requireOfferOpen(offer *types.OfferDocument) error {
	if offer.Status != types.OfferSent {
		return types.Invalid("status", fmt.Sprintf("offer is already %s", offer.Status))
	}
	return nil
}

// SendOffer uploads an offer letter, records the offer and emails the candidate.
func (s *Service) SendOffer(ctx context.Context, actor types.Actor, req types.SendOfferRequest, letter *storage.File) (*types.OfferDocument, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	if letter == nil {
		return nil, types.Invalid("document", "an offer letter is required")
	}
	sc, err := loadEmployerScope(ctx, s.store, actor, req.ApplicationID, "send offers")
	if err != nil {
		return nil, err
	}
	if err := ensureOpen(sc.app); err != nil {
		return nil, err
	}

	ref, err := s.uploader.UploadOfferLetter(ctx, req.ApplicationID, *letter)
	if err != nil {
		return nil, err
	}
	offer := &types.OfferDocument{
		ID:            s.newID(),
		ApplicationID: req.ApplicationID,
		Document:      ref,
		OfferAmount:   req.OfferAmount,
		Currency:      strings.ToUpper(req.Currency),
		Notes:         strings.TrimSpace(req.Notes),
		Status:        types.OfferSent,
	}

	err = s.store.InTx(ctx, func(tx Repository) error {
		var err error
		sc, err = loadEmployerScope(ctx, tx, actor, req.ApplicationID, "send offers")
		if err != nil {
			return err
		}
		if err := ensureOpen(sc.app); err != nil {
			return err
		}
		if err := tx.CreateOffer(ctx, offer); err != nil {
			return err
		}
		if err := advance(ctx, tx, sc.app, types.StageOffer, types.SubStageSent); err != nil {
			return err
		}
		return s.record(ctx, tx, actor, sc.app, activity.OfferSent{Offer: offer})
	})
	if err != nil {
		return nil, err
	}

	s.notifyCandidate(ctx, sc, notify.TemplateOfferSent, func(candidate string) any {
		return notify.OfferSentData{
			CandidateName: candidate,
			JobTitle:      sc.job.Title,
			OfferAmount:   offer.OfferAmount,
			Currency:      offer.Currency,
		}
	})
	return offer, nil
}

// SignOffer accepts an offer on behalf of the candidate, optionally attaching the
// countersigned letter.
func (s *Service) SignOffer(ctx context.Context, actor types.Actor, id uuid.UUID, signed *storage.File) (*types.OfferDocument, error) {
	if err := requireSeeker(actor, "sign offers"); err != nil {
		return nil, err
	}
	offer, sc, err := loadOffer(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	if err := requireOfferOpen(offer); err != nil {
		return nil, err
	}
	if err := ensureOpen(sc.app); err != nil {
		return nil, err
	}

	var ref types.FileRef
	if signed != nil {
		ref, err = s.uploader.UploadSignedOffer(ctx, offer.ApplicationID, *signed)
		if err != nil {
			return nil, err
		}
	}

	return s.mutateOffer(ctx, actor, id, func(tx Repository, offer *types.OfferDocument, sc scope) (activity.Event, error) {
		if err := requireOfferOpen(offer); err != nil {
			return nil, err
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		offer.Status = types.OfferSigned
		offer.SignedDocument = ref
		if err := tx.UpdateOffer(ctx, offer); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageOffer, types.SubStageSigned); err != nil {
			return nil, err
		}
		return activity.OfferSigned{Offer: offer}, nil
	})
}

// DeclineOffer records the candidate turning an offer down.
func (s *Service) DeclineOffer(ctx context.Context, actor types.Actor, id uuid.UUID, req types.DeclineOfferRequest) (*types.OfferDocument, error) {
	if err := requireSeeker(actor, "decline offers"); err != nil {
		return nil, err
	}
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	return s.mutateOffer(ctx, actor, id, func(tx Repository, offer *types.OfferDocument, sc scope) (activity.Event, error) {
		if err := requireOfferOpen(offer); err != nil {
			return nil, err
		}
		if err := ensureOpen(sc.app); err != nil {
			return nil, err
		}
		offer.Status = types.OfferDeclined
		offer.DeclineReason = strings.TrimSpace(req.Reason)
		if err := tx.UpdateOffer(ctx, offer); err != nil {
			return nil, err
		}
		if err := advance(ctx, tx, sc.app, types.StageOffer, types.SubStageDeclined); err != nil {
			return nil, err
		}
		return activity.OfferDeclined{Offer: offer}, nil
	})
}

// UpdateOfferDetails edits the amount, currency or notes of an outstanding offer.
func (s *Service) UpdateOfferDetails(ctx context.Context, actor types.Actor, id uuid.UUID, patch types.OfferDetailsPatch) (*types.OfferDocument, error) {
	if err := requireEmployer(actor, "edit offers"); err != nil {
		return nil, err
	}
	if err := types.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, types.Invalid("", "no changes supplied")
	}
	return s.mutateOffer(ctx, actor, id, func(tx Repository, offer *types.OfferDocument, sc scope) (activity.Event, error) {
		if err := requireOfferOpen(offer); err != nil {
			return nil, err
		}
		var fields []string
		if patch.OfferAmount != nil {
			offer.OfferAmount = patch.OfferAmount
			fields = append(fields, "offer_amount")
		}
		if patch.Currency != nil {
			offer.Currency = strings.ToUpper(*patch.Currency)
			fields = append(fields, "currency")
		}
		if patch.Notes != nil {
			offer.Notes = strings.TrimSpace(*patch.Notes)
			fields = append(fields, "notes")
		}
		if err := tx.UpdateOffer(ctx, offer); err != nil {
			return nil, err
		}
		if err := tx.TouchApplication(ctx, sc.app.ID); err != nil {
			return nil, err
		}
		return activity.OfferDetailsUpdated{Offer: offer, Fields: fields}, nil
	})
}

// ListOffers returns an application's offers.
func (s *Service) ListOffers(ctx context.Context, actor types.Actor, applicationID uuid.UUID) ([]types.OfferDocument, error) {
	if _, err := loadScope(ctx, s.store, actor, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListOffers(ctx, applicationID)
}

type offerMutation func(tx Repository, offer *types.OfferDocument, sc scope) (activity.Event, error)

func (s *Service) mutateOffer(ctx context.Context, actor types.Actor, id uuid.UUID, fn offerMutation) (*types.OfferDocument, error) {
	var offer *types.OfferDocument
	err := s.store.InTx(ctx, func(tx Repository) error {
		loaded, sc, err := loadOffer(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		e, err := fn(tx, loaded, sc)
		if err != nil {
			return err
		}
		offer = loaded
		return s.record(ctx, tx, actor, sc.app, e)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}
