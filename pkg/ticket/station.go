package ticket

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// StationIssuer is the issuer claim stamped into every station token.
const StationIssuer = "rehearsal"

var ErrBadIssuer = errors.New("unexpected token issuer")

// StationClaims is the payload of a station token: a short-lived,
// host-minted credential rendered as the check-in station's QR code and
// consumed by the join endpoint.
type StationClaims struct {
	WorkshopID string `json:"workshop_id"`
	Issuer     string `json:"issuer"`
	ExpiresAt  int64  `json:"expires_at"`
	ActorID    string `json:"actor_id"`
}

// IssueStation mints a station token for workshopID on behalf of actorID.
// Wire format is three dot-separated base64url segments without padding,
// signed with the same HMAC secret as attendee tickets.
func (s *Service) IssueStation(workshopID, actorID string) (string, *StationClaims, error) {
	header, err := json.Marshal(map[string]string{
		"alg": "HS256",
		"typ": "JWT",
	})
	if err != nil {
		return "", nil, err
	}

	claims := &StationClaims{
		WorkshopID: workshopID,
		Issuer:     StationIssuer,
		ExpiresAt:  s.now().Add(s.stationTTL).Unix(),
		ActorID:    actorID,
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", nil, err
	}

	message := base64URLEncode(header) + "." + base64URLEncode(payload)
	sig := base64URLEncode(s.signer.Sign([]byte(message)))
	return message + "." + sig, claims, nil
}

// VerifyStation validates a station token for workshopID at time now and
// returns its claims. The same one-sided grace window as attendee tickets
// applies to expiry.
func (s *Service) VerifyStation(token, workshopID string, now time.Time) (*StationClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrBadShape
	}

	message := parts[0] + "." + parts[1]
	sig, err := base64URLDecode(parts[2])
	if err != nil {
		return nil, ErrBadSignature
	}
	if !s.signer.Verify([]byte(message), sig) {
		return nil, ErrBadSignature
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, ErrBadShape
	}
	var claims StationClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrBadShape
	}

	if claims.Issuer != StationIssuer {
		return nil, ErrBadIssuer
	}
	if claims.WorkshopID != workshopID {
		return nil, ErrWorkshopMismatch
	}
	if claims.ExpiresAt < now.Add(-s.grace).Unix() {
		return nil, ErrExpired
	}
	return &claims, nil
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
