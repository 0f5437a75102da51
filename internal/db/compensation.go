package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

const compensationColumns = `id, application_id, candidate_expected, company_proposed, final_agreed, currency,
	benefits, notes, status, created_at, updated_at`

func scanCompensation(row interface{ Scan(...any) error }) (*types.Compensation, error) {
	var c types.Compensation
	err := row.Scan(&c.ID, &c.ApplicationID, &c.CandidateExpected, &c.CompanyProposed, &c.FinalAgreed,
		&c.Currency, &c.Benefits, &c.Notes, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCompensation inserts the compensation record of an application. A second record
// for the same application yields *types.ErrConflict.
func (db *DB) CreateCompensation(ctx context.Context, c *types.Compensation) error {
	err := db.q.QueryRow(ctx,
		`INSERT INTO ats_compensations (id, application_id, candidate_expected, company_proposed,
		 final_agreed, currency, benefits, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		c.ID, c.ApplicationID, c.CandidateExpected, c.CompanyProposed, c.FinalAgreed, c.Currency,
		nonNil(c.Benefits), c.Notes, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return &types.ErrConflict{Message: "compensation already initiated for this application"}
		}
		return fmt.Errorf("failed to create compensation: %w", err)
	}
	return nil
}

// GetCompensation retrieves a compensation record by ID, returning nil when it does not exist
func (db *DB) GetCompensation(ctx context.Context, id uuid.UUID) (*types.Compensation, error) {
	c, err := scanCompensation(db.q.QueryRow(ctx,
		`SELECT `+compensationColumns+` FROM ats_compensations WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compensation: %w", err)
	}
	return c, nil
}

// GetCompensationByApplication retrieves an application's compensation record, or nil
func (db *DB) GetCompensationByApplication(ctx context.Context, applicationID uuid.UUID) (*types.Compensation, error) {
	c, err := scanCompensation(db.q.QueryRow(ctx,
		`SELECT `+compensationColumns+` FROM ats_compensations WHERE application_id = $1`, applicationID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compensation: %w", err)
	}
	return c, nil
}

// UpdateCompensation stores every mutable compensation field
func (db *DB) UpdateCompensation(ctx context.Context, c *types.Compensation) error {
	err := db.q.QueryRow(ctx,
		`UPDATE ats_compensations
		 SET candidate_expected = $2, company_proposed = $3, final_agreed = $4, currency = $5,
		     benefits = $6, notes = $7, status = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		c.ID, c.CandidateExpected, c.CompanyProposed, c.FinalAgreed, c.Currency, nonNil(c.Benefits),
		c.Notes, c.Status,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return types.NotFound("compensation", c.ID)
		}
		return fmt.Errorf("failed to update compensation: %w", err)
	}
	return nil
}
