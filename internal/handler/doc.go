// Package handler provides HTTP request handlers for the attendance API.
//
// Each handler struct encapsulates the dependencies needed to serve
// requests for a feature area. All handlers follow a consistent
// pattern:
//
//   - Constructor function (NewXxxHandler) accepts the services it needs
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses via
//     MapServiceError
//
// # Scan Outcomes
//
// Check-in endpoints distinguish outcomes from errors. A scan that
// lands on an already-checked-in attendee, or an attendee who still
// owes payment, is a successful request with a status field in the
// body; only malformed tickets, missing authorization, and server
// faults surface as problem responses.
//
// # Authentication
//
// Most handlers require authentication via session tokens. The auth
// middleware extracts the user ID and makes it available via
// middleware.GetUserID(ctx). The scan endpoint additionally accepts a
// station token in the request body in place of a session.
package handler
