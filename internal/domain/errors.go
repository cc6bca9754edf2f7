package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database. For bookings it also means "no
// active (confirmed) booking" for the given listing and user.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank title, check-out not after check-in).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPersistence is returned by repo functions when the underlying store
// fails to read or write. It is always fatal to the operation that hit it.
var ErrPersistence = errors.New("persistence error")

// ErrNotification is returned by notification gateways when a message could
// not be dispatched. Services never propagate it; it becomes EmailSent=false.
var ErrNotification = errors.New("notification error")

// ErrConflict is returned when a write would violate a uniqueness rule,
// e.g. a second active booking for the same listing and user.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller is not allowed to act on a
// resource, e.g. editing a listing they do not own.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")
