// Package middleware provides HTTP middleware for the attendance API.
//
// The middleware package contains reusable components for request
// processing: session authentication, rate limiting, request IDs,
// structured request logging, panic recovery, CORS, and response
// compression.
//
// # Authentication
//
// The auth middleware validates session bearer tokens and extracts
// user identity:
//
//	handler = middleware.Chain(mux, middleware.Auth(sessions))
//
// After authentication, handlers read identity from the request
// context:
//
//	userID := middleware.GetUserID(r.Context())
//	role := middleware.GetUserRole(r.Context())
//
// # Rate Limiting
//
// Ticket issuance and scanning are cheap to call and easy to hammer;
// the token bucket limiter keys on the authenticated user when there
// is one and the client address otherwise:
//
//	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{})
//	handler = middleware.Chain(mux, middleware.RateLimit(limiter))
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): Returns authenticated user ID
//   - GetUserRole(ctx): Returns the authenticated user's role
//   - GetRequestID(ctx): Returns unique request identifier
package middleware
