package model

import (
	"bytes"
	"encoding/json"
)

// Club is an organisation that spends points to book places in
// competitions.  Clubs are identified by name and, for login, by email.
//
// Fields:
//  Name     – primary identifier, matched case-insensitively.
//  Email    – secondary identifier used by the login form.
//  Points   – spendable balance; one point buys one place.
//  Bookings – purchase history in the order purchases were accepted.
type Club struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Points   Count     `json:"points"`
	Bookings []Booking `json:"bookings"`
}

// Booking is one accepted purchase recorded on a club.
//
// Fields:
//  Competition – name of the booked competition.
//  Places      – number of places bought.
//  TS          – local time of the purchase, ISO 8601 with seconds.
type Booking struct {
	Competition string `json:"competition"`
	Places      int    `json:"places"`
	TS          string `json:"ts,omitempty"`
}

// BookingTimeLayout formats Booking.TS.
const BookingTimeLayout = "2006-01-02T15:04:05"

// BookedTotal sums the places across the club's whole booking history.
func (c *Club) BookedTotal() int {
	total := 0
	for _, b := range c.Bookings {
		total += b.Places
	}
	return total
}

// Clone returns a deep copy so callers can hand clubs out without sharing
// the booking slice.
func (c Club) Clone() Club {
	out := c
	out.Bookings = make([]Booking, len(c.Bookings))
	copy(out.Bookings, c.Bookings)
	return out
}

// UnmarshalJSON decodes a club leniently: a missing, null or non-list
// bookings field becomes an empty history and entries that are not
// objects are dropped.
func (c *Club) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name     string          `json:"name"`
		Email    string          `json:"email"`
		Points   Count           `json:"points"`
		Bookings json.RawMessage `json:"bookings"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Name = aux.Name
	c.Email = aux.Email
	c.Points = aux.Points
	c.Bookings = decodeBookings(aux.Bookings)
	return nil
}

func decodeBookings(raw json.RawMessage) []Booking {
	out := []Booking{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var b Booking
		if err := json.Unmarshal(item, &b); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// UnmarshalJSON reads places with the same coercion as Count, since the
// history is summed and a bad entry must count as zero.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var aux struct {
		Competition string          `json:"competition"`
		Places      json.RawMessage `json:"places"`
		TS          string          `json:"ts"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Competition = aux.Competition
	b.Places = coerceJSONInt(aux.Places)
	b.TS = aux.TS
	return nil
}
