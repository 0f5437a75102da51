package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// handleSendOffer accepts a multipart form: application_id, offer_amount, currency,
// notes and the document file holding the offer letter
func (s *Server) handleSendOffer(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.errorResponse(w, err)
		return
	}
	appID, err := formUUID(r, "application_id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	amount, err := formFloat(r, "offer_amount")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	letter, err := formFile(r, "document")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	req := types.SendOfferRequest{
		ApplicationID: appID,
		OfferAmount:   amount,
		Currency:      r.FormValue("currency"),
		Notes:         r.FormValue("notes"),
	}
	offer, err := s.svc.SendOffer(r.Context(), actor(r), req, letter)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, offer)
}

func (s *Server) handleUpdateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var patch types.OfferDetailsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.errorResponse(w, err)
		return
	}
	offer, err := s.svc.UpdateOfferDetails(r.Context(), actor(r), id, patch)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, offer)
}

// handleSignOffer accepts an optional signed document; a bodiless request signs without one
func (s *Server) handleSignOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var signed *storage.File
	if r.ContentLength != 0 {
		if err := s.parseMultipart(w, r); err != nil {
			s.errorResponse(w, err)
			return
		}
		if signed, err = formFile(r, "document"); err != nil {
			s.errorResponse(w, err)
			return
		}
	}
	offer, err := s.svc.SignOffer(r.Context(), actor(r), id, signed)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, offer)
}

func (s *Server) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	var req types.DeclineOfferRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	offer, err := s.svc.DeclineOffer(r.Context(), actor(r), id, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, offer)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	offers, err := s.svc.ListOffers(r.Context(), actor(r), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if offers == nil {
		offers = []types.OfferDocument{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"offers": offers, "count": len(offers)})
}
