package repository

import (
	"context"
	"errors"

	"github.com/rehearsal/attendance/internal/database"
)

// PaymentRepository reads payment evidence written by the platform's
// billing surfaces. This service never writes payment state.
type PaymentRepository struct {
	db database.Database
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db database.Database) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// HasPaid reports whether the user holds proof of payment for the
// workshop. Two forms of evidence are accepted: an enrollment flagged
// paid, or a payment record in a settled status. Either one suffices.
func (r *PaymentRepository) HasPaid(ctx context.Context, workshopID, userID string) (bool, error) {
	paid, err := r.hasPaidEnrollment(ctx, workshopID, userID)
	if err != nil {
		return false, err
	}
	if paid {
		return true, nil
	}

	return r.hasSettledPayment(ctx, workshopID, userID)
}

func (r *PaymentRepository) hasPaidEnrollment(ctx context.Context, workshopID, userID string) (bool, error) {
	query := `
		SELECT count() AS count FROM workshop_enrollment
		WHERE workshop = type::record($workshop_id)
		AND user = type::record($user_id)
		AND paid = true
		GROUP ALL
	`
	vars := map[string]interface{}{
		"workshop_id": workshopID,
		"user_id":     userID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return getInt(data, "count") > 0, nil
	}
	return false, nil
}

func (r *PaymentRepository) hasSettledPayment(ctx context.Context, workshopID, userID string) (bool, error) {
	query := `
		SELECT count() AS count FROM workshop_payment
		WHERE workshop = type::record($workshop_id)
		AND user = type::record($user_id)
		AND status IN ['paid', 'success']
		GROUP ALL
	`
	vars := map[string]interface{}{
		"workshop_id": workshopID,
		"user_id":     userID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return getInt(data, "count") > 0, nil
	}
	return false, nil
}
