package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")

	// ErrMalformedRecord marks a stored record a scanner cannot interpret.
	// Scanners log and skip such records; it never reaches an HTTP caller.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDelivery marks a failed live push. Delivery is best effort.
	ErrDelivery = errors.New("delivery failed")
)
