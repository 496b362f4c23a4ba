package supervisor

import "errors"

var (
	// ErrPidUnavailable is returned when a role is reported running but its
	// process identifier cannot be read back.
	ErrPidUnavailable = errors.New("process id unavailable")
	// ErrShuttingDown is returned for launches requested after Shutdown.
	ErrShuttingDown = errors.New("supervisor is shutting down")
	// ErrRateLimited is returned when a background launch could not get a
	// rate limit token before its context ended.
	ErrRateLimited = errors.New("background launch rate limit exceeded")
	// ErrUnknownRole is returned for role names missing from the config.
	ErrUnknownRole = errors.New("unknown role")
	// ErrBreakerOpen is returned while a role's start circuit breaker is open.
	ErrBreakerOpen = errors.New("role start circuit breaker open")
)
