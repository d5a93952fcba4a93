// Package repository owns the club and competition collections and the
// document stores they are loaded from and written back to.  The sentinel
// values below let higher layers such as the booking service and the
// handlers tell lookup misses apart from storage failures.
package repository

import "errors"

// ErrClubNotFound is returned when no club matches a name or email.
var ErrClubNotFound = errors.New("club not found")

// ErrCompetitionNotFound is returned when no competition matches a name.
var ErrCompetitionNotFound = errors.New("competition not found")

// ErrUnknownDriver is returned by OpenStore for an unsupported
// STORE_DRIVER value.
var ErrUnknownDriver = errors.New("unknown store driver")
