package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/club-booking/internal/model"
)

// Repository owns the in-memory club and competition collections for the
// lifetime of the process.  They are loaded once from the Store and written
// back in full whenever an update commits; nothing reloads them afterwards.
//
// Reads return copies.  Update runs its callback against a private copy
// under the write lock and only swaps it in after the store accepted it, so
// a rejected or failed update never leaks into the live collections.
type Repository struct {
	mu    sync.RWMutex
	store Store
	state Snapshot
}

// New loads the initial state from store.
func New(ctx context.Context, store Store) (*Repository, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	return &Repository{store: store, state: snap}, nil
}

// Snapshot returns a deep copy of both collections.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// Clubs returns a copy of every club in load order.
func (r *Repository) Clubs() []model.Club {
	return r.Snapshot().Clubs
}

// Competitions returns a copy of every competition in load order.
func (r *Repository) Competitions() []model.Competition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Competition, len(r.state.Competitions))
	copy(out, r.state.Competitions)
	return out
}

// FindClub looks a club up by name or email.
func (r *Repository) FindClub(key string) (model.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := FindClub(r.state.Clubs, key)
	if i < 0 {
		return model.Club{}, ErrClubNotFound
	}
	return r.state.Clubs[i].Clone(), nil
}

// FindCompetition looks a competition up by name.
func (r *Repository) FindCompetition(key string) (model.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := FindCompetition(r.state.Competitions, key)
	if i < 0 {
		return model.Competition{}, ErrCompetitionNotFound
	}
	return r.state.Competitions[i], nil
}

// Update runs fn on a copy of the state.  When fn reports commit, the copy
// is saved to the store and becomes the live state.  Returning false (or an
// error) discards the copy.
func (r *Repository) Update(ctx context.Context, fn func(s *Snapshot) (commit bool, err error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.Clone()
	commit, err := fn(&work)
	if err != nil || !commit {
		return err
	}
	if err := r.store.Save(ctx, work); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	r.state = work
	return nil
}

// Close releases the underlying store.
func (r *Repository) Close() error {
	return r.store.Close()
}
