package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrPushUnavailable marks push-registration failures caused by missing
	// platform configuration or a platform that cannot issue tokens. Fatal to
	// the push feature only, never to the hosting session.
	ErrPushUnavailable = errors.New("push unavailable")
)
