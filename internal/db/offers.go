package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const offerColumns = `id, application_id, document_url, document_filename, offer_amount, currency, notes, status,
	signed_document_url, signed_document_filename, decline_reason, created_at, updated_at`

func scanOffer(row interface{ Scan(...any) error }) (*types.OfferDocument, error) {
	var o types.OfferDocument
	err := row.Scan(&o.ID, &o.ApplicationID, &o.Document.URL, &o.Document.Filename, &o.OfferAmount,
		&o.Currency, &o.Notes, &o.Status, &o.SignedDocument.URL, &o.SignedDocument.Filename,
		&o.DeclineReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOffer inserts an offer document
func (db *DB) CreateOffer(ctx context.Context, o *types.OfferDocument) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_offer_documents (id, application_id, document_url, document_filename,
		 offer_amount, currency, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		o.ID, o.ApplicationID, o.Document.URL, o.Document.Filename, o.OfferAmount, o.Currency, o.Notes, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// GetOffer retrieves an offer by ID, returning nil when it does not exist
func (db *DB) GetOffer(ctx context.Context, id uuid.UUID) (*types.OfferDocument, error) {
	o, err := scanOffer(db.q.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM ats_offer_documents WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return o, nil
}

// ListOffers returns an application's offers, oldest first
func (db *DB) ListOffers(ctx context.Context, applicationID uuid.UUID) ([]types.OfferDocument, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+offerColumns+` FROM ats_offer_documents WHERE application_id = $1 ORDER BY created_at`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []types.OfferDocument{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// UpdateOffer stores every mutable offer field
func (db *DB) UpdateOffer(ctx context.Context, o *types.OfferDocument) error {
	err := db.q.QueryRow(ctx,
		`UPDATE ats_offer_documents
		 SET offer_amount = $2, currency = $3, notes = $4, status = $5, signed_document_url = $6,
		     signed_document_filename = $7, decline_reason = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		o.ID, o.OfferAmount, o.Currency, o.Notes, o.Status, o.SignedDocument.URL,
		o.SignedDocument.Filename, o.DeclineReason,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("offer", o.ID)
		}
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return nil
}
