package ticket

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadPrefix       = errors.New("missing ticket prefix")
	ErrBadShape        = errors.New("malformed ticket payload")
	ErrBadExpiryFormat = errors.New("invalid expiry field")
	ErrWorkshopMismatch = errors.New("ticket issued for a different workshop")
	ErrBadSignature    = errors.New("invalid signature")
	ErrExpired         = errors.New("ticket expired")
	ErrBadField        = errors.New("field contains reserved delimiter")
	ErrSecretTooShort  = errors.New("signing secret must be at least 16 bytes")
)

const (
	// Prefix is the literal version tag every attendee ticket starts with.
	Prefix = "ATT:v1|"

	fieldSep   = "|"
	nonceBytes = 6

	// MinSecretLen is the minimum accepted signing secret length.
	MinSecretLen = 16

	DefaultAttendeeTTL = 10 * time.Minute
	DefaultStationTTL  = 5 * time.Minute
	DefaultGrace       = 2 * time.Minute
)

// Signer computes and verifies HMAC-SHA256 signatures with a shared secret.
// Both credential shapes in this package sign through the same Signer.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. The secret must be at least MinSecretLen bytes.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	return &Signer{secret: secret}, nil
}

// Sign returns the raw HMAC-SHA256 of msg.
func (s *Signer) Sign(msg []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(msg)
	return mac.Sum(nil)
}

// Verify reports whether sig is the HMAC of msg, in constant time.
func (s *Signer) Verify(msg, sig []byte) bool {
	return hmac.Equal(s.Sign(msg), sig)
}

// verifyHex compares a lowercase-hex signature against the MAC of msg in
// constant time. The comparison happens on the hex text, so a case-flipped
// signature does not verify.
func (s *Signer) verifyHex(msg []byte, sigHex string) bool {
	expected := hex.EncodeToString(s.Sign(msg))
	return hmac.Equal([]byte(expected), []byte(sigHex))
}

// AttendeeTicket is the parsed form of an attendee check-in credential.
// Wire format: ATT:v1|<workshop_id>|<user_id>|<expires_at>|<nonce>|<signature>
type AttendeeTicket struct {
	WorkshopID string
	UserID     string
	ExpiresAt  int64  // Unix seconds
	Nonce      string // hex-encoded random bytes
	Signature  string // lowercase-hex HMAC over the canonical bytes
}

// Encode renders the ticket in its canonical text form.
func (t *AttendeeTicket) Encode() string {
	return Prefix + string(t.canonical()) + fieldSep + t.Signature
}

// canonical returns the signed byte sequence:
// <workshop_id>|<user_id>|<expires_at>|<nonce>
func (t *AttendeeTicket) canonical() []byte {
	return []byte(t.WorkshopID + fieldSep + t.UserID + fieldSep +
		strconv.FormatInt(t.ExpiresAt, 10) + fieldSep + t.Nonce)
}

// Config holds ticket service settings.
type Config struct {
	Secret      []byte
	AttendeeTTL time.Duration // default 10 minutes
	StationTTL  time.Duration // default 5 minutes
	Grace       time.Duration // expiry leeway for clock drift, default 2 minutes
}

// Service issues and verifies attendee tickets and station tokens.
type Service struct {
	signer      *Signer
	attendeeTTL time.Duration
	stationTTL  time.Duration
	grace       time.Duration
	now         func() time.Time
}

// NewService creates a ticket service. Zero durations take defaults.
func NewService(cfg Config) (*Service, error) {
	signer, err := NewSigner(cfg.Secret)
	if err != nil {
		return nil, err
	}
	if cfg.AttendeeTTL == 0 {
		cfg.AttendeeTTL = DefaultAttendeeTTL
	}
	if cfg.StationTTL == 0 {
		cfg.StationTTL = DefaultStationTTL
	}
	if cfg.Grace == 0 {
		cfg.Grace = DefaultGrace
	}
	return &Service{
		signer:      signer,
		attendeeTTL: cfg.AttendeeTTL,
		stationTTL:  cfg.StationTTL,
		grace:       cfg.Grace,
		now:         time.Now,
	}, nil
}

// NewTestService creates a service with an injected clock for testing.
func NewTestService(secret []byte, now func() time.Time) *Service {
	svc, err := NewService(Config{Secret: secret})
	if err != nil {
		panic(err)
	}
	svc.now = now
	return svc
}

// AttendeeTTL returns the attendee ticket lifetime.
func (s *Service) AttendeeTTL() time.Duration {
	return s.attendeeTTL
}

// StationTTL returns the station token lifetime.
func (s *Service) StationTTL() time.Duration {
	return s.stationTTL
}

// IssueAttendee mints a signed ticket binding user to workshop for the
// configured TTL. Issuance is stateless; nothing is persisted.
func (s *Service) IssueAttendee(workshopID, userID string) (*AttendeeTicket, error) {
	if strings.Contains(workshopID, fieldSep) || strings.Contains(userID, fieldSep) {
		return nil, ErrBadField
	}

	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	t := &AttendeeTicket{
		WorkshopID: workshopID,
		UserID:     userID,
		ExpiresAt:  s.now().Add(s.attendeeTTL).Unix(),
		Nonce:      hex.EncodeToString(buf),
	}
	t.Signature = hex.EncodeToString(s.signer.Sign(t.canonical()))
	return t, nil
}

// DecodeAttendee parses raw ticket text without verifying it. Each deviation
// from the wire format fails with a specific error so the verifier can
// report precisely.
func DecodeAttendee(raw string) (*AttendeeTicket, error) {
	if !strings.HasPrefix(raw, Prefix) {
		return nil, ErrBadPrefix
	}
	parts := strings.Split(raw[len(Prefix):], fieldSep)
	if len(parts) != 5 {
		return nil, ErrBadShape
	}
	exp, err := strconv.ParseUint(parts[2], 10, 63)
	if err != nil {
		return nil, ErrBadExpiryFormat
	}
	return &AttendeeTicket{
		WorkshopID: parts[0],
		UserID:     parts[1],
		ExpiresAt:  int64(exp),
		Nonce:      parts[3],
		Signature:  parts[4],
	}, nil
}

// VerifyAttendee validates raw ticket text presented for workshopID at time
// now. Checks run in a fixed order, each with a distinct failure: decode,
// workshop binding, signature, expiry. The grace window is one-sided: a
// ticket is only rejected for being too far in the past, never for a
// timestamp in the future.
func (s *Service) VerifyAttendee(raw, workshopID string, now time.Time) (*AttendeeTicket, error) {
	t, err := DecodeAttendee(raw)
	if err != nil {
		return nil, err
	}
	if t.WorkshopID != workshopID {
		return nil, ErrWorkshopMismatch
	}
	if !s.signer.verifyHex(t.canonical(), t.Signature) {
		return nil, ErrBadSignature
	}
	if t.ExpiresAt < now.Add(-s.grace).Unix() {
		return nil, ErrExpired
	}
	return t, nil
}
