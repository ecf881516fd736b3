// Package repository holds the MySQL persistence for events, registrations,
// contact messages and back-office accounts.  The sentinel values below let
// higher layers tell failure scenarios apart without inspecting driver
// errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrStale is returned by conditional writes whose guard no longer matches
// the stored row (version moved on, status already changed, capacity
// guard failed).  Callers re-read and decide whether to retry.
var ErrStale = errors.New("stale write")

// ErrForbidden is returned when the caller attempts an operation on a
// resource it may not touch.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent state, such as deleting an event that still has
// registrations.  Handlers translate this into 409.
var ErrConflict = errors.New("conflict")
