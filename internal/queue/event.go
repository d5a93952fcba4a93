// Package queue defines the booking events exchanged over RabbitMQ and the
// consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// BookingQueueName is the durable queue accepted purchases are published to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published after a purchase has been accepted
// and persisted.  It carries enough state for downstream consumers to log
// or notify without reading the club and competition documents.
type BookingConfirmedEvent struct {
	EventID         string `json:"event_id"`
	Club            string `json:"club"`
	ClubEmail       string `json:"club_email"`
	Competition     string `json:"competition"`
	CompetitionDate string `json:"competition_date"`
	Places          int    `json:"places"`
	PointsLeft      int    `json:"points_left"`
	PlacesLeft      int    `json:"places_left"`
	BookedTotal     int    `json:"booked_total"`
	ConfirmedAt     string `json:"confirmed_at"`
}

// NewEventID returns a random identifier for a new event.
func NewEventID() string { return uuid.NewString() }

// FormatConfirmedAt renders confirmation times in events.
func FormatConfirmedAt(t time.Time) string { return t.UTC().Format(time.RFC3339) }
