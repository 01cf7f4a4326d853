package service

import (
	"context"
	"errors"
	"time"

	"github.com/rehearsal/attendance/internal/model"
	"github.com/rehearsal/attendance/pkg/ticket"
)

// WorkshopRepository defines the interface for workshop facts access
type WorkshopRepository interface {
	GetAccessFacts(ctx context.Context, workshopID string) (*model.WorkshopAccessFacts, error)
	IsStaff(ctx context.Context, workshopID, userID string) (bool, error)
}

// AttendanceRepository defines the interface for the attendance ledger
type AttendanceRepository interface {
	RecordCheckin(ctx context.Context, rec *model.AttendanceRecord) (bool, error)
	Exists(ctx context.Context, workshopID, userID string) (bool, error)
	Count(ctx context.Context, workshopID string) (int, error)
	List(ctx context.Context, workshopID string) ([]model.AttendanceEntry, error)
}

// PaymentRepository defines the interface for payment evidence lookups
type PaymentRepository interface {
	HasPaid(ctx context.Context, workshopID, userID string) (bool, error)
}

// UserRepository defines the interface for user lookups
type UserRepository interface {
	Get(ctx context.Context, userID string) (*model.User, error)
}

// AttendanceService handles admission business logic: ticket issuance,
// scan check-in, station token issuance, and open join.
type AttendanceService struct {
	workshops  WorkshopRepository
	attendance AttendanceRepository
	payments   PaymentRepository
	users      UserRepository
	tickets    *ticket.Service
	now        func() time.Time
}

// AttendanceServiceConfig holds configuration for the attendance service
type AttendanceServiceConfig struct {
	WorkshopRepo   WorkshopRepository
	AttendanceRepo AttendanceRepository
	PaymentRepo    PaymentRepository
	UserRepo       UserRepository
	Tickets        *ticket.Service
	Now            func() time.Time // defaults to time.Now
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(cfg AttendanceServiceConfig) *AttendanceService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		workshops:  cfg.WorkshopRepo,
		attendance: cfg.AttendanceRepo,
		payments:   cfg.PaymentRepo,
		users:      cfg.UserRepo,
		tickets:    cfg.Tickets,
		now:        now,
	}
}

// IssueTicket issues a short-lived attendee ticket bound to the
// workshop and the calling user. Any authenticated user may hold a
// ticket for an existing workshop; admission checks happen at scan
// time, so issuance stays cheap.
func (s *AttendanceService) IssueTicket(ctx context.Context, workshopID, userID string) (*model.TicketResponse, error) {
	facts, err := s.workshops.GetAccessFacts(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, ErrWorkshopNotFound
	}

	t, err := s.tickets.IssueAttendee(facts.ID, userID)
	if err != nil {
		return nil, err
	}

	return &model.TicketResponse{
		Ticket:     t.Encode(),
		WorkshopID: facts.ID,
		Title:      facts.Title,
		ExpiresAt:  t.ExpiresAt,
		ExpiresIn:  int(s.tickets.AttendeeTTL().Seconds()),
	}, nil
}

// Scan verifies a presented ticket and records the check-in. The caller
// must be authorized to operate the workshop: its owner, registered
// staff, a platform admin, or the holder of a valid station token for
// this workshop. Payment gating applies to the attendee, not the
// scanner. The outcome is one of checked_in, already, or
// payment_required; all three are successes from the transport's view.
func (s *AttendanceService) Scan(ctx context.Context, workshopID, actorID string, req *model.ScanRequest) (*model.ScanResponse, error) {
	// A caller with neither a session nor a station token presented no
	// credential at all, which is a missing-authentication case rather
	// than an authorization failure.
	if actorID == "" && req.StationToken == "" {
		return nil, ErrNotAuthenticated
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	facts, err := s.workshops.GetAccessFacts(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, ErrWorkshopNotFound
	}

	authorized, err := s.canOperate(ctx, facts, actorID)
	if err != nil {
		return nil, err
	}
	if !authorized && req.StationToken != "" {
		if _, err := s.tickets.VerifyStation(req.StationToken, facts.ID, s.now()); err == nil {
			authorized = true
		}
	}
	if !authorized {
		return nil, ErrNotAuthorized
	}

	t, err := s.tickets.VerifyAttendee(req.Ticket, facts.ID, s.now())
	if err != nil {
		return nil, ticketProblem(err)
	}

	if facts.IsPaid() {
		paid, err := s.payments.HasPaid(ctx, facts.ID, t.UserID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return &model.ScanResponse{
				Status:     model.ScanStatusPaymentRequired,
				WorkshopID: facts.ID,
				UserID:     t.UserID,
				PriceCents: facts.PriceCents,
			}, nil
		}
	}

	rec := &model.AttendanceRecord{
		WorkshopID: facts.ID,
		UserID:     t.UserID,
		Method:     model.CheckinMethodScan,
		ScannedBy:  &actorID,
	}
	created, err := s.attendance.RecordCheckin(ctx, rec)
	if err != nil {
		return nil, err
	}

	resp := &model.ScanResponse{
		Status:     model.ScanStatusCheckedIn,
		WorkshopID: facts.ID,
		UserID:     t.UserID,
	}
	if !created {
		resp.Status = model.ScanStatusAlready
	} else {
		resp.CheckedInAt = &rec.CheckedInAt
	}

	// Display name is best-effort; a missing user record does not fail
	// the scan.
	if attendee, err := s.users.Get(ctx, t.UserID); err == nil && attendee != nil {
		resp.UserName = attendee.Name
	}

	return resp, nil
}

// IssueStationToken issues a short-lived token that lets an unattended
// check-in station scan for one workshop. Only the workshop owner or a
// platform admin may arm a station, and only for paid workshops: a free
// workshop's tickets carry no payment gate, so a leaked station token
// would be a free self-check-in oracle.
func (s *AttendanceService) IssueStationToken(ctx context.Context, workshopID, actorID string) (*model.StationTokenResponse, error) {
	facts, err := s.workshops.GetAccessFacts(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, ErrWorkshopNotFound
	}

	allowed := facts.OwnerID != "" && facts.OwnerID == actorID
	if !allowed {
		actor, err := s.users.Get(ctx, actorID)
		if err != nil {
			return nil, err
		}
		allowed = actor != nil && actor.IsAdmin()
	}
	if !allowed {
		return nil, ErrNotAuthorized
	}

	if !facts.IsPaid() {
		return nil, ErrStationNotEligible
	}

	token, claims, err := s.tickets.IssueStation(facts.ID, actorID)
	if err != nil {
		return nil, err
	}

	return &model.StationTokenResponse{
		Token:      token,
		WorkshopID: facts.ID,
		ExpiresAt:  claims.ExpiresAt,
		ExpiresIn:  int(s.tickets.StationTTL().Seconds()),
	}, nil
}

// Join records a self check-in for workshops that allow direct joining.
// Payment gating applies here exactly as it does on the scan path, and
// capacity is checked before inserting. The capacity check is advisory:
// two racing joins can both pass it, so a workshop may land slightly
// over its cap. Duplicate joins stay impossible regardless, courtesy of
// the ledger's unique index.
func (s *AttendanceService) Join(ctx context.Context, workshopID, userID string) (*model.JoinResponse, error) {
	facts, err := s.workshops.GetAccessFacts(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, ErrWorkshopNotFound
	}

	if facts.IsPaid() {
		paid, err := s.payments.HasPaid(ctx, facts.ID, userID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return &model.JoinResponse{
				Status:     model.JoinStatusPaymentRequired,
				WorkshopID: facts.ID,
				PriceCents: facts.PriceCents,
			}, nil
		}
	}

	// Re-joining reports already without consuming a capacity check.
	joined, err := s.attendance.Exists(ctx, facts.ID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return &model.JoinResponse{Status: model.JoinStatusAlready, WorkshopID: facts.ID}, nil
	}

	if facts.HasCapacityLimit() {
		count, err := s.attendance.Count(ctx, facts.ID)
		if err != nil {
			return nil, err
		}
		if count >= facts.Capacity {
			return &model.JoinResponse{Status: model.JoinStatusFull, WorkshopID: facts.ID}, nil
		}
	}

	rec := &model.AttendanceRecord{
		WorkshopID: facts.ID,
		UserID:     userID,
		Method:     model.CheckinMethodSelf,
	}
	created, err := s.attendance.RecordCheckin(ctx, rec)
	if err != nil {
		return nil, err
	}

	status := model.JoinStatusJoined
	if !created {
		status = model.JoinStatusAlready
	}
	return &model.JoinResponse{Status: status, WorkshopID: facts.ID}, nil
}

// Roster returns the attendance list for a workshop. Restricted to the
// people who can operate it.
func (s *AttendanceService) Roster(ctx context.Context, workshopID, actorID string) (*model.AttendanceListResponse, error) {
	facts, err := s.workshops.GetAccessFacts(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if facts == nil {
		return nil, ErrWorkshopNotFound
	}

	authorized, err := s.canOperate(ctx, facts, actorID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrNotAuthorized
	}

	entries, err := s.attendance.List(ctx, facts.ID)
	if err != nil {
		return nil, err
	}

	return &model.AttendanceListResponse{
		WorkshopID: facts.ID,
		Entries:    entries,
		TotalCount: len(entries),
	}, nil
}

// canOperate reports whether the actor may run check-in for the
// workshop: its owner, registered staff, or a platform admin.
func (s *AttendanceService) canOperate(ctx context.Context, facts *model.WorkshopAccessFacts, actorID string) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	if facts.OwnerID != "" && facts.OwnerID == actorID {
		return true, nil
	}

	staff, err := s.workshops.IsStaff(ctx, facts.ID, actorID)
	if err != nil {
		return false, err
	}
	if staff {
		return true, nil
	}

	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return false, err
	}
	return actor != nil && actor.IsAdmin(), nil
}

// ticketProblem maps ticket verification errors onto the validation
// problem vocabulary the API exposes.
func ticketProblem(err error) error {
	reason := model.ReasonBadShape
	switch {
	case errors.Is(err, ticket.ErrBadPrefix):
		reason = model.ReasonBadPrefix
	case errors.Is(err, ticket.ErrBadShape):
		reason = model.ReasonBadShape
	case errors.Is(err, ticket.ErrBadExpiryFormat):
		reason = model.ReasonBadExpiryFormat
	case errors.Is(err, ticket.ErrWorkshopMismatch):
		reason = model.ReasonWorkshopMismatch
	case errors.Is(err, ticket.ErrBadSignature):
		reason = model.ReasonBadSignature
	case errors.Is(err, ticket.ErrExpired):
		reason = model.ReasonExpired
	}
	return model.NewTicketValidationError(reason, err.Error())
}
