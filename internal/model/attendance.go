package model

import "time"

// AttendanceRecord is one row of the attendance ledger. The ledger is
// append-only and unique per (workshop, user); a second check-in for the
// same pair is reported as already recorded, never duplicated.
type AttendanceRecord struct {
	ID          string    `json:"id"`
	WorkshopID  string    `json:"workshop_id"`
	UserID      string    `json:"user_id"`
	Method      string    `json:"method"`
	ScannedBy   *string   `json:"scanned_by,omitempty"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// Check-in method constants
const (
	CheckinMethodScan = "scan"
	CheckinMethodSelf = "self"
)

// Scan outcome constants. These are outcomes of a successful request,
// not errors: a scanner needs to render all three.
const (
	ScanStatusCheckedIn       = "checked_in"
	ScanStatusAlready         = "already"
	ScanStatusPaymentRequired = "payment_required"
)

// Join outcome constants
const (
	JoinStatusJoined          = "joined"
	JoinStatusAlready         = "already"
	JoinStatusFull            = "full"
	JoinStatusPaymentRequired = "payment_required"
)

// TicketResponse carries a freshly issued attendee ticket
type TicketResponse struct {
	Ticket     string `json:"ticket"`
	WorkshopID string `json:"workshop_id"`
	Title      string `json:"title,omitempty"`
	ExpiresAt  int64  `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

// StationTokenResponse carries a check-in station token
type StationTokenResponse struct {
	Token      string `json:"token"`
	WorkshopID string `json:"workshop_id"`
	ExpiresAt  int64  `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

// ScanRequest represents a station submitting a scanned ticket.
// StationToken is optional: a scan authorized by the caller's own
// session (owner or staff) does not need one.
type ScanRequest struct {
	Ticket       string `json:"ticket"`
	StationToken string `json:"station_token,omitempty"`
}

// Validate validates a ScanRequest
func (r *ScanRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Ticket == "" {
		errors = append(errors, FieldError{Field: "ticket", Message: "ticket is required"})
	}

	return errors
}

// ScanResponse reports the outcome of a scan
type ScanResponse struct {
	Status      string     `json:"status"`
	WorkshopID  string     `json:"workshop_id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	PriceCents  int        `json:"price_cents,omitempty"`
}

// JoinResponse reports the outcome of an open join attempt
type JoinResponse struct {
	Status     string `json:"status"`
	WorkshopID string `json:"workshop_id"`
	PriceCents int    `json:"price_cents,omitempty"`
}

// AttendanceEntry is one roster line with the attendee's display name
// joined in
type AttendanceEntry struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	Method      string    `json:"method"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// AttendanceListResponse is the roster for a workshop
type AttendanceListResponse struct {
	WorkshopID string            `json:"workshop_id"`
	Entries    []AttendanceEntry `json:"entries"`
	TotalCount int               `json:"total_count"`
}
