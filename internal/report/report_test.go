package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/club-booking/internal/model"
	"github.com/iliyamo/club-booking/internal/repository"
)

func TestWriteWorkbook(t *testing.T) {
	snap := repository.Snapshot{
		Clubs: []model.Club{
			{Name: "Simply Lift", Email: "john@simplylift.co", Points: 10, Bookings: []model.Booking{
				{Competition: "Spring Festival", Places: 3, TS: "2026-10-16T09:30:00"},
			}},
			{Name: "Iron Temple", Email: "admin@irontemple.com", Points: 4, Bookings: []model.Booking{}},
		},
		Competitions: []model.Competition{
			{Name: "Spring Festival", Date: "2099-03-27 10:00:00", NumberOfPlaces: 22},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PointsSheet, BookingsSheet, CompetitionsSheet}, f.GetSheetList())

	points, err := f.GetRows(PointsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Club", "Email", "Points", "Booked total"},
		{"Simply Lift", "john@simplylift.co", "10", "3"},
		{"Iron Temple", "admin@irontemple.com", "4", "0"},
	}, points)

	bookings, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Club", "Competition", "Places", "Booked at"},
		{"Simply Lift", "Spring Festival", "3", "2026-10-16T09:30:00"},
	}, bookings)

	comps, err := f.GetRows(CompetitionsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spring Festival", "2099-03-27 10:00:00", "22"}, comps[1])
}

func TestWorkbookEmptySnapshot(t *testing.T) {
	f, err := Workbook(repository.Snapshot{})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
