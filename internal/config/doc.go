// Package config manages application configuration for the attendance API.
//
// Configuration is parsed from environment variables via struct tags and
// validated up front so misconfiguration fails at startup, not on the
// first request:
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - AttendanceConfig: ticket signing secret and TTL/grace windows
//   - SessionConfig: session bearer token verification settings
//
// # Secrets
//
// ATTENDANCE_HMAC_SECRET and SESSION_JWT_SECRET must be at least 16
// bytes. In production Validate rejects a missing or short secret. In
// development a well-known fallback is substituted so the stack runs
// without setup; SigningSecret and SessionSecret report when the
// fallback is in play so it can be logged loudly.
package config
