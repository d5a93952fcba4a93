package repository

import (
	"context"

	"github.com/iliyamo/club-booking/internal/model"
)

// FakeStore is an in-memory Store whose behaviour can be overridden per test.
type FakeStore struct {
	LoadFunc  func(ctx context.Context) (Snapshot, error)
	SaveFunc  func(ctx context.Context, s Snapshot) error
	Saved     []Snapshot
	CloseHits int
}

func NewFakeStore(initial Snapshot) *FakeStore {
	return &FakeStore{
		LoadFunc: func(ctx context.Context) (Snapshot, error) { return initial.Clone(), nil },
	}
}

func (f *FakeStore) Load(ctx context.Context) (Snapshot, error) {
	return f.LoadFunc(ctx)
}

func (f *FakeStore) Save(ctx context.Context, s Snapshot) error {
	if f.SaveFunc != nil {
		if err := f.SaveFunc(ctx, s); err != nil {
			return err
		}
	}
	f.Saved = append(f.Saved, s.Clone())
	return nil
}

func (f *FakeStore) Close() error {
	f.CloseHits++
	return nil
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Clubs: []model.Club{
			{Name: "Simply Lift", Email: "john@simplylift.co", Points: 13, Bookings: []model.Booking{}},
			{Name: "Iron Temple", Email: "admin@irontemple.com", Points: 4, Bookings: []model.Booking{}},
		},
		Competitions: []model.Competition{
			{Name: "Spring Festival", Date: "2099-03-27 10:00:00", NumberOfPlaces: 25},
			{Name: "Fall Classic", Date: "2099-10-22 13:30:00", NumberOfPlaces: 10},
		},
	}
}

func modelBooking(competition string, places int) model.Booking {
	return model.Booking{Competition: competition, Places: places, TS: "2026-10-16T09:30:00"}
}
