package repository

import (
	"context"
	"errors"

	"github.com/rehearsal/attendance/internal/database"
	"github.com/rehearsal/attendance/internal/model"
)

// WorkshopRepository handles workshop data access
type WorkshopRepository struct {
	db database.Database
}

// NewWorkshopRepository creates a new workshop repository
func NewWorkshopRepository(db database.Database) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

// GetAccessFacts loads the admission-relevant view of a workshop in one
// query. Workshop records written by different platform surfaces name
// their owner field differently; the coalesce keeps that schema drift
// out of the service layer. Returns nil when the workshop does not exist.
func (r *WorkshopRepository) GetAccessFacts(ctx context.Context, workshopID string) (*model.WorkshopAccessFacts, error) {
	query := `
		SELECT
			id,
			title ?? '' AS title,
			(host_user_id ?? mentor_id ?? owner_id ?? host_id ?? created_by) AS owner,
			paid_required ?? ((price_cents ?? 0) > 0) AS payment_required,
			price_cents ?? 0 AS price_cents,
			capacity ?? 0 AS capacity
		FROM ONLY type::record($workshop_id)
	`
	vars := map[string]interface{}{"workshop_id": workshopID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	return &model.WorkshopAccessFacts{
		ID:              extractRecordID(data["id"]),
		Title:           getString(data, "title"),
		OwnerID:         extractRecordID(data["owner"]),
		PaymentRequired: getBool(data, "payment_required"),
		PriceCents:      getInt(data, "price_cents"),
		Capacity:        getInt(data, "capacity"),
	}, nil
}

// IsStaff reports whether the user is registered as check-in staff for
// the workshop
func (r *WorkshopRepository) IsStaff(ctx context.Context, workshopID, userID string) (bool, error) {
	query := `
		SELECT count() AS count FROM workshop_staff
		WHERE workshop = type::record($workshop_id)
		AND user = type::record($user_id)
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
