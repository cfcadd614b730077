package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// leaking infrastructure details.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrExpired    = errors.New("expired")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)
