package service

// Limits are the two independent place caps enforced on every purchase.
// Both default to 12; they are separate settings because one bounds a
// single request and the other bounds a club's whole history.
type Limits struct {
	PerBooking int // most places one purchase may request
	ClubTotal  int // most places a club may hold across all bookings
}

// DefaultLimits returns the caps the application has always shipped with.
func DefaultLimits() Limits {
	return Limits{PerBooking: 12, ClubTotal: 12}
}
