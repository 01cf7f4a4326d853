// Package model defines domain entities and data structures for the
// attendance API.
//
// The model package contains struct definitions for domain objects,
// request/response types, and error definitions. Models are used across
// all layers of the application.
//
// # Domain Entities
//
//   - WorkshopAccessFacts: the admission-relevant snapshot of a workshop
//   - AttendanceRecord: one row of the idempotent attendance ledger
//   - User: the slice of the platform user record this service reads
//
// # JSON Serialization
//
// All models use json struct tags for API serialization.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go. Ticket
// validation failures carry a machine-readable "reason" extension so
// scanner clients can tell a stale code from a forged one.
package model
