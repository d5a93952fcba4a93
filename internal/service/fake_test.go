package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-booking/internal/model"
	"github.com/iliyamo/club-booking/internal/queue"
	"github.com/iliyamo/club-booking/internal/repository"
)

// memStore is an in-memory repository.Store.
type memStore struct {
	mu      sync.Mutex
	snap    repository.Snapshot
	saves   int
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (repository.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, s repository.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = s.Clone()
	return nil
}

func (m *memStore) Close() error { return nil }

// FakePublisher records published events.
type FakePublisher struct {
	mu     sync.Mutex
	Events []queue.BookingConfirmedEvent
	Err    error
}

func (f *FakePublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, ev)
	return nil
}

// FakeRecorder records metric calls.
type FakeRecorder struct {
	Accepted []int
	Rejected [][]string
}

func (f *FakeRecorder) BookingAccepted(places int)     { f.Accepted = append(f.Accepted, places) }
func (f *FakeRecorder) BookingRejected(rules []string) { f.Rejected = append(f.Rejected, rules) }

var errDiskFull = errors.New("disk full")

// fixedNow is the pinned clock for service tests.
var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

func testSnapshot() repository.Snapshot {
	return repository.Snapshot{
		Clubs: []model.Club{
			{Name: "Simply Lift", Email: "john@simplylift.co", Points: 13, Bookings: []model.Booking{}},
			{Name: "Iron Temple", Email: "admin@irontemple.com", Points: 4, Bookings: []model.Booking{}},
			{Name: "She Lifts", Email: "kate@shelifts.co.uk", Points: 30, Bookings: []model.Booking{
				{Competition: "Fall Classic", Places: 6, TS: "2026-01-01T10:00:00"},
				{Competition: "Spring Festival", Places: 4, TS: "2026-02-01T10:00:00"},
			}},
		},
		Competitions: []model.Competition{
			{Name: "Spring Festival", Date: "2099-03-27 10:00:00", NumberOfPlaces: 25},
			{Name: "Fall Classic", Date: "2099-10-22 13:30:00", NumberOfPlaces: 13},
			{Name: "Winter Open", Date: "2000-01-01 00:00:00", NumberOfPlaces: 20},
			{Name: "Mystery Meet", Date: "sometime soon", NumberOfPlaces: 20},
			{Name: "Undated Cup", NumberOfPlaces: 20},
		},
	}
}

type serviceFixture struct {
	svc       *BookingService
	repo      *repository.Repository
	store     *memStore
	publisher *FakePublisher
	recorder  *FakeRecorder
}

func newFixture(t *testing.T, snap repository.Snapshot) serviceFixture {
	t.Helper()
	store := &memStore{snap: snap}
	repo, err := repository.New(context.Background(), store)
	require.NoError(t, err)
	pub := &FakePublisher{}
	rec := &FakeRecorder{}
	svc := NewBookingService(repo, DefaultLimits(), pub, rec, nil)
	svc.SetClock(func() time.Time { return fixedNow })
	return serviceFixture{svc: svc, repo: repo, store: store, publisher: pub, recorder: rec}
}
