package service

import (
	"fmt"
	"time"

	"github.com/iliyamo/club-booking/internal/model"
)

// Rule names the purchase check a request failed.
type Rule string

const (
	RuleNotFound             Rule = "NotFound"
	RuleTemporalViolation    Rule = "TemporalViolation"
	RuleInvalidQuantity      Rule = "InvalidQuantity"
	RuleInsufficientCapacity Rule = "InsufficientCapacity"
	RuleInsufficientPoints   Rule = "InsufficientPoints"
	RuleGlobalCapExceeded    Rule = "GlobalCapExceeded"
)

// Violation is one failed check with the message shown to the club.
type Violation struct {
	Rule    Rule
	Message string
}

// Decision is the outcome of Validate.  Places is the requested count as
// parsed (0 when it could not be parsed).
type Decision struct {
	Places     int
	Violations []Violation
}

// Accepted reports whether every check passed.
func (d Decision) Accepted() bool { return len(d.Violations) == 0 }

// Rules lists the failed rules in check order.
func (d Decision) Rules() []Rule {
	out := make([]Rule, 0, len(d.Violations))
	for _, v := range d.Violations {
		out = append(out, v.Rule)
	}
	return out
}

// Messages lists the failure messages in check order.
func (d Decision) Messages() []string {
	out := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Has reports whether rule is among the violations.
func (d Decision) Has(rule Rule) bool {
	for _, v := range d.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// Validate runs every purchase check against club and comp and collects all
// failures; it never stops at the first one and never mutates its inputs.
// A nil club or comp fails the lookup check and then takes part in the
// remaining checks with zero points, zero places and an empty history.
func Validate(club *model.Club, comp *model.Competition, rawPlaces string, now time.Time, limits Limits) Decision {
	var d Decision
	add := func(rule Rule, msg string) {
		d.Violations = append(d.Violations, Violation{Rule: rule, Message: msg})
	}

	if club == nil || comp == nil {
		add(RuleNotFound, "Club or competition not found.")
	}
	if comp != nil && IsPast(*comp, now) {
		add(RuleTemporalViolation, "Competition is in the past.")
	}

	d.Places = model.ParseCount(rawPlaces, 0)
	if _, err := SanitizePlaces(rawPlaces); err != nil {
		add(RuleInvalidQuantity, "Invalid number of places.")
	}
	if d.Places > limits.PerBooking {
		add(RuleInvalidQuantity, fmt.Sprintf("Limit is %d places per booking.", limits.PerBooking))
	}

	remaining, points, already := 0, 0, 0
	if comp != nil {
		remaining = comp.NumberOfPlaces.Int()
	}
	if club != nil {
		points = club.Points.Int()
		already = club.BookedTotal()
	}

	if d.Places > remaining {
		add(RuleInsufficientCapacity, "Not enough places remaining for this competition.")
	}
	if d.Places > points {
		add(RuleInsufficientPoints, "Not enough points.")
	}
	if already+d.Places > limits.ClubTotal {
		add(RuleGlobalCapExceeded, fmt.Sprintf("Limit of %d total places per club reached.", limits.ClubTotal))
	}
	return d
}
