// Package service implements the business logic layer for the
// attendance API.
//
// The service package contains the domain logic for ticket issuance,
// scanning, self-service joins, and roster access. Services are the
// primary abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// Services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with
//     repository dependencies
//   - Methods implement business operations with proper validation
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Outcomes vs Errors
//
// Check-in operations report domain outcomes (checked_in, already,
// payment_required, full) as response values, not errors. Errors are
// reserved for authorization failures, missing resources, malformed
// tickets, and infrastructure faults:
//
//	var (
//	    ErrWorkshopNotFound = errors.New("workshop not found")
//	    ErrNotAuthorized    = errors.New("not authorized to operate this workshop")
//	)
package service
