// Package repository implements data access for the attendance API.
//
// Repositories translate between SurrealDB results and domain models so
// services never see raw query output. Each repository takes the
// database.Database interface, which keeps them testable against mocks.
//
//   - WorkshopRepository: admission facts (owner, payment flags,
//     capacity) coalesced into one typed view
//   - AttendanceRepository: the idempotent check-in ledger
//   - PaymentRepository: read-only payment evidence
//   - UserRepository: platform user lookups
//
// # Idempotency
//
// AttendanceRepository.RecordCheckin relies on the ledger's unique
// (workshop, user) index. A duplicate insert is a normal outcome, not an
// error; the repository reports it as created = false.
package repository
