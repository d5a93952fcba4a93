package repository

import (
	"strings"

	"github.com/iliyamo/club-booking/internal/model"
)

// FindClub returns the index of the first club whose name or email equals
// key, ignoring case and surrounding whitespace, or -1.
func FindClub(clubs []model.Club, key string) int {
	key = normalizeKey(key)
	for i := range clubs {
		if strings.ToLower(clubs[i].Name) == key || strings.ToLower(clubs[i].Email) == key {
			return i
		}
	}
	return -1
}

// FindCompetition returns the index of the first competition whose name
// equals key, ignoring case and surrounding whitespace, or -1.
func FindCompetition(competitions []model.Competition, key string) int {
	key = normalizeKey(key)
	for i := range competitions {
		if strings.ToLower(competitions[i].Name) == key {
			return i
		}
	}
	return -1
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
