package models

// UserIDHeader carries the caller's user id on every request.
const UserIDHeader = "X-Sharer-User-Id"

// RequestIDHeader correlates gateway and server log lines.
const RequestIDHeader = "X-Request-Id"

const (
	// DefaultRateLimitRequests requests allowed per caller per window at the gateway
	DefaultRateLimitRequests = 100

	// DefaultRateLimitWindow window length in seconds
	DefaultRateLimitWindow = 60
)
