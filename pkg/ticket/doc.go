// Package ticket implements the signed credentials used for workshop
// check-in: the attendee ticket carried in a personal QR code, and the
// shorter-lived station token rendered at the host's check-in station.
//
// Both credentials share one HMAC-SHA256 signing discipline (Signer) over
// different wire shapes. The attendee ticket is a versioned, pipe-delimited
// text payload; the station token is a three-segment base64url claim set.
// Neither credential is ever persisted: unforgeability rests entirely on
// the signature and the short TTL.
package ticket
