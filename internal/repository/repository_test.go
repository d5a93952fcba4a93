package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, *FakeStore) {
	t.Helper()
	store := NewFakeStore(sampleSnapshot())
	repo, err := New(context.Background(), store)
	require.NoError(t, err)
	return repo, store
}

func TestNewPropagatesLoadError(t *testing.T) {
	store := NewFakeStore(Snapshot{})
	store.LoadFunc = func(ctx context.Context) (Snapshot, error) { return Snapshot{}, errors.New("disk gone") }

	_, err := New(context.Background(), store)
	assert.ErrorContains(t, err, "disk gone")
}

func TestRepositoryFind(t *testing.T) {
	repo, _ := newTestRepo(t)

	club, err := repo.FindClub("JOHN@simplylift.co")
	require.NoError(t, err)
	assert.Equal(t, "Simply Lift", club.Name)

	_, err = repo.FindClub("nobody")
	assert.ErrorIs(t, err, ErrClubNotFound)

	comp, err := repo.FindCompetition("fall classic")
	require.NoError(t, err)
	assert.Equal(t, 10, comp.NumberOfPlaces.Int())

	_, err = repo.FindCompetition("Winter")
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestRepositoryReadsReturnCopies(t *testing.T) {
	repo, _ := newTestRepo(t)

	club, err := repo.FindClub("Simply Lift")
	require.NoError(t, err)
	club.Points = 0
	club.Bookings = append(club.Bookings, modelBooking("Spring Festival", 1))

	clubs := repo.Clubs()
	clubs[0].Name = "changed"
	comps := repo.Competitions()
	comps[0].NumberOfPlaces = 0

	if diff := cmp.Diff(sampleSnapshot(), repo.Snapshot()); diff != "" {
		t.Errorf("live state changed through a copy (-want +got):\n%s", diff)
	}
}

func TestRepositoryUpdate(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(s *Snapshot) (bool, error)
		saveErr   error
		wantErr   bool
		wantSaves int
		wantPts   int
	}{
		{
			name: "commit persists and swaps state",
			fn: func(s *Snapshot) (bool, error) {
				s.Clubs[0].Points = 1
				return true, nil
			},
			wantSaves: 1,
			wantPts:   1,
		},
		{
			name: "no commit discards changes",
			fn: func(s *Snapshot) (bool, error) {
				s.Clubs[0].Points = 1
				return false, nil
			},
			wantPts: 13,
		},
		{
			name: "callback error discards changes",
			fn: func(s *Snapshot) (bool, error) {
				s.Clubs[0].Points = 1
				return true, errors.New("boom")
			},
			wantErr: true,
			wantPts: 13,
		},
		{
			name: "save failure keeps previous state",
			fn: func(s *Snapshot) (bool, error) {
				s.Clubs[0].Points = 1
				return true, nil
			},
			saveErr: errors.New("read-only filesystem"),
			wantErr: true,
			wantPts: 13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store := newTestRepo(t)
			if tt.saveErr != nil {
				store.SaveFunc = func(ctx context.Context, s Snapshot) error { return tt.saveErr }
			}

			err := repo.Update(context.Background(), tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, store.Saved, tt.wantSaves)

			club, err := repo.FindClub("Simply Lift")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPts, club.Points.Int())
		})
	}
}

func TestRepositoryClose(t *testing.T) {
	repo, store := newTestRepo(t)
	require.NoError(t, repo.Close())
	assert.Equal(t, 1, store.CloseHits)
}
