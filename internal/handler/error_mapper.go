package handler

import (
	"errors"

	"github.com/rehearsal/attendance/internal/database"
	"github.com/rehearsal/attendance/internal/model"
	"github.com/rehearsal/attendance/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring
// consistent HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Services that build problems directly pass them through untouched.
	var pd *model.ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrNotAuthenticated):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotAuthorized):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrWorkshopNotFound):
		return model.NewNotFoundError("workshop")
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")

	// ===== Eligibility Errors → 422 =====
	case errors.Is(err, service.ErrStationNotEligible):
		return model.NewNotEligibleError(err.Error())

	// ===== Database Errors → 500 =====
	case errors.Is(err, database.ErrConnection),
		errors.Is(err, database.ErrQuery):
		return model.NewInternalError("a storage error occurred")
	}

	return model.NewInternalError("")
}
