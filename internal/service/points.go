package service

import "github.com/iliyamo/club-booking/internal/model"

// ClubPoints is one row of the public points listing.
type ClubPoints struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ListPoints projects clubs to their point balances in load order.
func ListPoints(clubs []model.Club) []ClubPoints {
	out := make([]ClubPoints, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, ClubPoints{Name: c.Name, Points: c.Points.Int()})
	}
	return out
}

// PointsByName maps club name to points.  With duplicate names the first
// club wins, matching lookup order.
func PointsByName(clubs []model.Club) map[string]int {
	out := make(map[string]int, len(clubs))
	for _, c := range clubs {
		if _, seen := out[c.Name]; !seen {
			out[c.Name] = c.Points.Int()
		}
	}
	return out
}
