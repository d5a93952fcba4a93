package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/iliyamo/club-booking/internal/model"
)

// DocumentsBucket is the BoltDB bucket holding one key per document.
const DocumentsBucket = "documents"

// BoltStore keeps both documents in a single BoltDB file.  Save writes the
// two documents in one transaction, so a crash never leaves clubs and
// competitions out of step.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (creating when needed) the BoltDB file at dbPath.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(DocumentsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Load reads both documents.  A document that was never saved loads as an
// empty collection.
func (s *BoltStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DocumentsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", DocumentsBucket)
		}

		if data := bucket.Get([]byte(ClubsDocument)); data != nil {
			clubs, err := DecodeClubs(data)
			if err != nil {
				return err
			}
			snap.Clubs = clubs
		}
		if data := bucket.Get([]byte(CompetitionsDocument)); data != nil {
			comps, err := DecodeCompetitions(data)
			if err != nil {
				return err
			}
			snap.Competitions = comps
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load documents: %w", err)
	}
	if snap.Clubs == nil {
		snap.Clubs = []model.Club{}
	}
	if snap.Competitions == nil {
		snap.Competitions = []model.Competition{}
	}
	return snap, nil
}

// Save replaces both documents in a single read-write transaction.
func (s *BoltStore) Save(ctx context.Context, snap Snapshot) error {
	clubs, err := EncodeClubs(snap.Clubs)
	if err != nil {
		return fmt.Errorf("encode clubs: %w", err)
	}
	comps, err := EncodeCompetitions(snap.Competitions)
	if err != nil {
		return fmt.Errorf("encode competitions: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DocumentsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", DocumentsBucket)
		}
		if err := bucket.Put([]byte(CompetitionsDocument), comps); err != nil {
			return err
		}
		return bucket.Put([]byte(ClubsDocument), clubs)
	})
}

// Close closes the BoltDB database.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
