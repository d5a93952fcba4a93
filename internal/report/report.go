// Package report exports clubs, bookings and competitions as an xlsx
// workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/club-booking/internal/repository"
)

// Sheet names in the exported workbook.
const (
	PointsSheet       = "Points"
	BookingsSheet     = "Bookings"
	CompetitionsSheet = "Competitions"
)

// Workbook builds the export.  The caller closes the returned file.
func Workbook(snap repository.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), PointsSheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, s := range []string{BookingsSheet, CompetitionsSheet} {
		if _, err := f.NewSheet(s); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	points := [][]any{{"Club", "Email", "Points", "Booked total"}}
	bookings := [][]any{{"Club", "Competition", "Places", "Booked at"}}
	for _, c := range snap.Clubs {
		points = append(points, []any{c.Name, c.Email, c.Points.Int(), c.BookedTotal()})
		for _, b := range c.Bookings {
			bookings = append(bookings, []any{c.Name, b.Competition, b.Places, b.TS})
		}
	}
	comps := [][]any{{"Competition", "Date", "Places left"}}
	for _, c := range snap.Competitions {
		comps = append(comps, []any{c.Name, c.Date, c.NumberOfPlaces.Int()})
	}

	for sheet, rows := range map[string][][]any{
		PointsSheet:       points,
		BookingsSheet:     bookings,
		CompetitionsSheet: comps,
	} {
		if err := writeRows(f, sheet, rows, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the workbook for snap to w.
func Write(w io.Writer, snap repository.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
