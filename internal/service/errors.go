package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Lookup Errors =====
var (
	ErrWorkshopNotFound = errors.New("workshop not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ===== Authorization Errors =====
var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNotAuthorized    = errors.New("not authorized to operate this workshop")
)

// ===== Eligibility Errors =====
var (
	ErrStationNotEligible = errors.New("station tokens are limited to paid workshops")
)
