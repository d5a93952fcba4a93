package service

import (
	"errors"

	"github.com/iliyamo/club-booking/internal/model"
)

var (
	// ErrInvalidPlaces is returned by SanitizePlaces for input that is not
	// an integer.
	ErrInvalidPlaces = errors.New("invalid input")
	// ErrNonPositivePlaces is returned by SanitizePlaces for zero or less.
	ErrNonPositivePlaces = errors.New("places must be positive")
	// ErrInvalidBooking is returned by RemainingPlaces when booked is out
	// of range.
	ErrInvalidBooking = errors.New("invalid booking numbers")
)

// SanitizePlaces turns a submitted place count into a positive integer.
// Oversized integers are clamped rather than rejected.
func SanitizePlaces(raw string) (int, error) {
	n, err := model.ParseCountStrict(raw)
	if err != nil {
		return 0, ErrInvalidPlaces
	}
	if n < 1 {
		return 0, ErrNonPositivePlaces
	}
	return n, nil
}

// RemainingPlaces returns total - booked.  booked must lie in [0, total].
func RemainingPlaces(total, booked int) (int, error) {
	if booked < 0 || booked > total {
		return 0, ErrInvalidBooking
	}
	return total - booked, nil
}
