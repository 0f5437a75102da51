package types

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus is the lifecycle of an offer letter: sent -> signed | declined
type OfferStatus string

const (
	OfferSent     OfferStatus = "sent"
	OfferSigned   OfferStatus = "signed"
	OfferDeclined OfferStatus = "declined"
)

// OfferDocument is an offer letter sent to a candidate
type OfferDocument struct {
	ID             uuid.UUID   `json:"id"`
	ApplicationID  uuid.UUID   `json:"application_id"`
	Document       FileRef     `json:"document"`
	OfferAmount    *float64    `json:"offer_amount,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Status         OfferStatus `json:"status"`
	SignedDocument FileRef     `json:"signed_document"`
	DeclineReason  string      `json:"decline_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// SendOfferRequest carries the form fields of POST /ats/offers
type SendOfferRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
	OfferAmount   *float64  `json:"offer_amount,omitempty" validate:"omitempty,gt=0"`
	Currency      string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes         string    `json:"notes,omitempty" validate:"max=5000"`
}

// DeclineOfferRequest is the body of POST /ats/offers/{id}/decline
type DeclineOfferRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// OfferDetailsPatch is the body of PATCH /ats/offers/{id}
type OfferDetailsPatch struct {
	OfferAmount *float64 `json:"offer_amount,omitempty" validate:"omitempty,gt=0"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// IsEmpty reports whether the patch changes nothing.
func (p OfferDetailsPatch) IsEmpty() bool {
	return p.OfferAmount == nil && p.Currency == nil && p.Notes == nil
}

// CompensationStatus is the lifecycle of a compensation proposal
type CompensationStatus string

const (
	CompensationNotSent  CompensationStatus = "not_sent"
	CompensationSent     CompensationStatus = "sent"
	CompensationAccepted CompensationStatus = "accepted"
	CompensationDeclined CompensationStatus = "declined"
)

// IsTerminal reports whether the proposal has been settled.
func (s CompensationStatus) IsTerminal() bool {
	return s == CompensationAccepted || s == CompensationDeclined
}

// Compensation is the salary negotiation record, at most one per application
type Compensation struct {
	ID                uuid.UUID          `json:"id"`
	ApplicationID     uuid.UUID          `json:"application_id"`
	CandidateExpected *float64           `json:"candidate_expected,omitempty"`
	CompanyProposed   *float64           `json:"company_proposed,omitempty"`
	FinalAgreed       *float64           `json:"final_agreed,omitempty"`
	Currency          string             `json:"currency"`
	Benefits          []string           `json:"benefits"`
	Notes             string             `json:"notes,omitempty"`
	Status            CompensationStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// InitiateCompensationRequest is the body of POST /ats/compensation
type InitiateCompensationRequest struct {
	ApplicationID     uuid.UUID `json:"application_id" validate:"required"`
	CandidateExpected *float64  `json:"candidate_expected,omitempty" validate:"omitempty,gte=0"`
	CompanyProposed   *float64  `json:"company_proposed,omitempty" validate:"omitempty,gte=0"`
	Currency          string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	Benefits          []string  `json:"benefits,omitempty" validate:"dive,required"`
	Notes             string    `json:"notes,omitempty" validate:"max=5000"`
}

// ApproveCompensationRequest is the body of POST /ats/compensation/{id}/approve
type ApproveCompensationRequest struct {
	FinalAgreed *float64 `json:"final_agreed,omitempty" validate:"omitempty,gte=0"`
}

// CompensationDetailsPatch is the body of PATCH /ats/compensation/{id}
type CompensationDetailsPatch struct {
	CandidateExpected *float64 `json:"candidate_expected,omitempty" validate:"omitempty,gte=0"`
	CompanyProposed   *float64 `json:"company_proposed,omitempty" validate:"omitempty,gte=0"`
	Currency          *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Benefits          []string `json:"benefits,omitempty" validate:"omitempty,dive,required"`
	Notes             *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CompensationDetailsPatch) IsEmpty() bool {
	return p.CandidateExpected == nil && p.CompanyProposed == nil && p.Currency == nil &&
		p.Benefits == nil && p.Notes == nil
}
