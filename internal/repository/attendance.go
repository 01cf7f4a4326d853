package repository

import (
	"context"
	"errors"

	"github.com/rehearsal/attendance/internal/database"
	"github.com/rehearsal/attendance/internal/model"
)

// AttendanceRepository handles the attendance ledger
type AttendanceRepository struct {
	db database.Database
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db database.Database) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// RecordCheckin appends one ledger row for (workshop, user). The unique
// index enforces at-most-once: when the pair is already recorded the
// insert fails with a duplicate error, which is reported as created =
// false rather than an error. Concurrent scans of the same ticket both
// land here and exactly one wins; no application-level locking.
func (r *AttendanceRepository) RecordCheckin(ctx context.Context, rec *model.AttendanceRecord) (bool, error) {
	query := `
		CREATE workshop_attendance CONTENT {
			workshop: type::record($workshop_id),
			user: type::record($user_id),
			method: $method,
			scanned_by: IF $scanned_by != NONE THEN type::record($scanned_by) ELSE NONE END,
			checked_in_at: time::now()
		} RETURN AFTER
	`

	var scannedBy interface{}
	if rec.ScannedBy != nil {
		scannedBy = *rec.ScannedBy
	}

	vars := map[string]interface{}{
		"workshop_id": rec.WorkshopID,
		"user_id":     rec.UserID,
		"method":      rec.Method,
		"scanned_by":  scannedBy,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		rec.ID = extractRecordID(data["id"])
		rec.CheckedInAt = getTime(data, "checked_in_at")
	}
	return true, nil
}

// Exists reports whether the (workshop, user) pair is already on the
// ledger
func (r *AttendanceRepository) Exists(ctx context.Context, workshopID, userID string) (bool, error) {
	query := `
		SELECT count() AS count FROM workshop_attendance
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

// Count returns the number of ledger rows for a workshop
func (r *AttendanceRepository) Count(ctx context.Context, workshopID string) (int, error) {
	query := `
		SELECT count() AS count FROM workshop_attendance
		WHERE workshop = type::record($workshop_id)
		GROUP ALL
	`
	vars := map[string]interface{}{"workshop_id": workshopID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return getInt(data, "count"), nil
	}
	return 0, nil
}

// List returns the roster for a workshop in check-in order, with the
// attendee's display name joined in via the record link
func (r *AttendanceRepository) List(ctx context.Context, workshopID string) ([]model.AttendanceEntry, error) {
	query := `
		SELECT user, user.name AS user_name, method, checked_in_at
		FROM workshop_attendance
		WHERE workshop = type::record($workshop_id)
		ORDER BY checked_in_at ASC
	`
	vars := map[string]interface{}{"workshop_id": workshopID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []model.AttendanceEntry{}, nil
	}

	entries := make([]model.AttendanceEntry, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		entries = append(entries, model.AttendanceEntry{
			UserID:      extractRecordID(data["user"]),
			UserName:    getString(data, "user_name"),
			Method:      getString(data, "method"),
			CheckedInAt: getTime(data, "checked_in_at"),
		})
	}

	return entries, nil
}
