package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Test Helpers
// ============================================================================

var testSecret = []byte("unit-test-secret-0123456789")

func newFixedClockService(t *testing.T, at time.Time) *Service {
	t.Helper()
	return NewTestService(testSecret, func() time.Time { return at })
}

// hmacHex computes the signature the way an external verifier would,
// straight from the wire contract.
func hmacHex(secret []byte, msg string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func flipChar(s string, i int) string {
	c := byte('x')
	if s[i] == 'x' {
		c = 'y'
	}
	return s[:i] + string(c) + s[i+1:]
}

// ============================================================================
// Signer Tests
// ============================================================================

func TestNewSigner_ShortSecret_Rejected(t *testing.T) {
	t.Parallel()

	_, err := NewSigner([]byte("too-short"))
	if err != ErrSecretTooShort {
		t.Errorf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestSigner_VerifyRejectsMutatedSignature(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := []byte("ws:1|user:2|1700000000|abcdef")
	sig := signer.Sign(msg)
	if !signer.Verify(msg, sig) {
		t.Fatal("valid signature must verify")
	}

	sig[0] ^= 0x01
	if signer.Verify(msg, sig) {
		t.Error("mutated signature must not verify")
	}
}

// ============================================================================
// Attendee Ticket Tests
// ============================================================================

func TestIssueAttendee_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verified, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verified.WorkshopID != "workshop:42" {
		t.Errorf("expected workshop:42, got %q", verified.WorkshopID)
	}
	if verified.UserID != "user:7" {
		t.Errorf("expected user:7, got %q", verified.UserID)
	}
	if verified.ExpiresAt != now.Add(DefaultAttendeeTTL).Unix() {
		t.Errorf("expected expiry %d, got %d", now.Add(DefaultAttendeeTTL).Unix(), verified.ExpiresAt)
	}
}

func TestIssueAttendee_WireFormat(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := issued.Encode()
	if !strings.HasPrefix(raw, "ATT:v1|") {
		t.Fatalf("expected ATT:v1| prefix, got %q", raw)
	}

	parts := strings.Split(strings.TrimPrefix(raw, "ATT:v1|"), "|")
	if len(parts) != 5 {
		t.Fatalf("expected 5 parts, got %d", len(parts))
	}

	// Signature must be the lowercase-hex HMAC-SHA256 of the unsigned fields.
	base := strings.Join(parts[:4], "|")
	if parts[4] != hmacHex(testSecret, base) {
		t.Error("signature does not match HMAC of canonical bytes")
	}

	// Nonce is at least 6 random bytes, hex-encoded.
	if len(parts[3]) < 12 {
		t.Errorf("nonce too short: %q", parts[3])
	}
	if _, err := hex.DecodeString(parts[3]); err != nil {
		t.Errorf("nonce is not hex: %v", err)
	}
}

func TestIssueAttendee_UniqueNonces(t *testing.T) {
	t.Parallel()

	svc := newFixedClockService(t, time.Unix(1_700_000_000, 0))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		issued, err := svc.IssueAttendee("workshop:1", "user:1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[issued.Nonce] {
			t.Fatal("duplicate nonce generated")
		}
		seen[issued.Nonce] = true
	}
}

func TestIssueAttendee_DelimiterInField_Rejected(t *testing.T) {
	t.Parallel()

	svc := newFixedClockService(t, time.Unix(1_700_000_000, 0))

	if _, err := svc.IssueAttendee("work|shop", "user:1"); err != ErrBadField {
		t.Errorf("expected ErrBadField, got %v", err)
	}
	if _, err := svc.IssueAttendee("workshop:1", "us|er"); err != ErrBadField {
		t.Errorf("expected ErrBadField, got %v", err)
	}
}

func TestDecodeAttendee_BadPrefix(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"",
		"ATT:v2|a|b|1|c|d",
		"att:v1|a|b|1|c|d",
		"a|b|1|c|d",
	} {
		if _, err := DecodeAttendee(raw); err != ErrBadPrefix {
			t.Errorf("DecodeAttendee(%q): expected ErrBadPrefix, got %v", raw, err)
		}
	}
}

func TestDecodeAttendee_BadShape(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"ATT:v1|a|b|1|c",       // four parts
		"ATT:v1|a|b|1|c|d|e",   // six parts
		"ATT:v1|",              // one empty part
	} {
		if _, err := DecodeAttendee(raw); err != ErrBadShape {
			t.Errorf("DecodeAttendee(%q): expected ErrBadShape, got %v", raw, err)
		}
	}
}

func TestDecodeAttendee_BadExpiryFormat(t *testing.T) {
	t.Parallel()

	for _, exp := range []string{"abc", "-5", "+5", "12.5", ""} {
		raw := "ATT:v1|a|b|" + exp + "|c|d"
		if _, err := DecodeAttendee(raw); err != ErrBadExpiryFormat {
			t.Errorf("expiry %q: expected ErrBadExpiryFormat, got %v", exp, err)
		}
	}
}

func TestVerifyAttendee_WorkshopMismatch(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	issued, err := svc.IssueAttendee("workshop:a", "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.VerifyAttendee(issued.Encode(), "workshop:b", now)
	if err != ErrWorkshopMismatch {
		t.Errorf("expected ErrWorkshopMismatch, got %v", err)
	}
}

func TestVerifyAttendee_TamperedAnywhere_NeverVerifies(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := issued.Encode()

	for i := 0; i < len(raw); i++ {
		mutated := flipChar(raw, i)
		if mutated == raw {
			continue
		}
		if _, err := svc.VerifyAttendee(mutated, "workshop:42", now); err == nil {
			t.Fatalf("mutation at index %d verified: %q", i, mutated)
		}
	}
}

func TestVerifyAttendee_CaseFlippedSignature_Rejected(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upper := Prefix + string(issued.canonical()) + "|" + strings.ToUpper(issued.Signature)
	if upper == issued.Encode() {
		t.Skip("signature has no letters to flip")
	}
	if _, err := svc.VerifyAttendee(upper, "workshop:42", now); err != ErrBadSignature {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyAttendee_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, issuedAt)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exp := time.Unix(issued.ExpiresAt, 0)

	// expires_at = now - 119: inside the grace window, still valid.
	if _, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", exp.Add(119*time.Second)); err != nil {
		t.Errorf("expected valid at expiry+119s, got %v", err)
	}

	// expires_at = now - 121: past the grace window.
	if _, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", exp.Add(121*time.Second)); err != ErrExpired {
		t.Errorf("expected ErrExpired at expiry+121s, got %v", err)
	}
}

func TestVerifyAttendee_IssuedAtZero_TTL600_ValidThrough719(t *testing.T) {
	t.Parallel()

	start := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, start)

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", start.Add(719*time.Second)); err != nil {
		t.Errorf("expected valid at T+719, got %v", err)
	}
	if _, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", start.Add(721*time.Second)); err != ErrExpired {
		t.Errorf("expected ErrExpired at T+721, got %v", err)
	}
}

func TestVerifyAttendee_FutureExpiry_Accepted(t *testing.T) {
	t.Parallel()

	// The grace window is one-sided: a ticket stamped far in the future
	// (issuer clock ahead of the verifier) is never rejected for that.
	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now.Add(time.Hour))

	issued, err := svc.IssueAttendee("workshop:42", "user:7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.VerifyAttendee(issued.Encode(), "workshop:42", now); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

// ============================================================================
// Station Token Tests
// ============================================================================

func TestIssueStation_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	token, claims, err := svc.IssueStation("workshop:42", "user:host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Issuer != "rehearsal" {
		t.Errorf("expected issuer rehearsal, got %q", claims.Issuer)
	}
	if claims.ExpiresAt != now.Add(DefaultStationTTL).Unix() {
		t.Errorf("expected expiry %d, got %d", now.Add(DefaultStationTTL).Unix(), claims.ExpiresAt)
	}

	verified, err := svc.VerifyStation(token, "workshop:42", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified.WorkshopID != "workshop:42" || verified.ActorID != "user:host" {
		t.Errorf("claims mismatch: %+v", verified)
	}
}

func TestIssueStation_WireFormat(t *testing.T) {
	t.Parallel()

	svc := newFixedClockService(t, time.Unix(1_700_000_000, 0))

	token, _, err := svc.IssueStation("workshop:42", "user:host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.ContainsAny(token, "=") {
		t.Error("token segments must not carry base64 padding")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		t.Fatalf("header is not base64url: %v", err)
	}
	var header map[string]string
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		t.Fatalf("header is not JSON: %v", err)
	}
	if header["alg"] != "HS256" {
		t.Errorf("expected alg HS256, got %q", header["alg"])
	}

	// Signature covers the ASCII bytes "<header>.<payload>".
	mac := hmac.New(sha256.New, testSecret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expected := strings.TrimRight(base64.URLEncoding.EncodeToString(mac.Sum(nil)), "=")
	if parts[2] != expected {
		t.Error("signature does not cover header.payload")
	}
}

func TestVerifyStation_TamperedSignature_Rejected(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	token, _, err := svc.IssueStation("workshop:42", "user:host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mutated := flipChar(token, len(token)-1)
	if _, err := svc.VerifyStation(mutated, "workshop:42", now); err != ErrBadSignature {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyStation_WrongWorkshop_Rejected(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	token, _, err := svc.IssueStation("workshop:a", "user:host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.VerifyStation(token, "workshop:b", now); err != ErrWorkshopMismatch {
		t.Errorf("expected ErrWorkshopMismatch, got %v", err)
	}
}

func TestVerifyStation_ForeignIssuer_Rejected(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	// Craft a correctly signed token with a different issuer claim.
	header := base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64URLEncode([]byte(`{"workshop_id":"workshop:42","issuer":"someone-else","expires_at":1700000300,"actor_id":"user:host"}`))
	mac := hmac.New(sha256.New, testSecret)
	mac.Write([]byte(header + "." + payload))
	token := header + "." + payload + "." + base64URLEncode(mac.Sum(nil))

	if _, err := svc.VerifyStation(token, "workshop:42", now); err != ErrBadIssuer {
		t.Errorf("expected ErrBadIssuer, got %v", err)
	}
}

func TestVerifyStation_Expired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	svc := newFixedClockService(t, now)

	token, claims, err := svc.IssueStation("workshop:42", "user:host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := time.Unix(claims.ExpiresAt, 0)
	if _, err := svc.VerifyStation(token, "workshop:42", exp.Add(119*time.Second)); err != nil {
		t.Errorf("expected valid inside grace window, got %v", err)
	}
	if _, err := svc.VerifyStation(token, "workshop:42", exp.Add(121*time.Second)); err != ErrExpired {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyStation_BadShape(t *testing.T) {
	t.Parallel()

	svc := newFixedClockService(t, time.Unix(1_700_000_000, 0))

	for _, token := range []string{"", "a.b", "a.b.c.d"} {
		if _, err := svc.VerifyStation(token, "workshop:42", time.Unix(1_700_000_000, 0)); err != ErrBadShape {
			t.Errorf("VerifyStation(%q): expected ErrBadShape, got %v", token, err)
		}
	}
}
