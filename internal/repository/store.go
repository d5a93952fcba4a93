package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/club-booking/internal/model"
)

// Snapshot is the full state kept by the application: both collections in
// load order.
type Snapshot struct {
	Clubs        []model.Club
	Competitions []model.Competition
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Clubs:        make([]model.Club, len(s.Clubs)),
		Competitions: make([]model.Competition, len(s.Competitions)),
	}
	for i, c := range s.Clubs {
		out.Clubs[i] = c.Clone()
	}
	copy(out.Competitions, s.Competitions)
	return out
}

// Store loads and saves whole snapshots.  Implementations always rewrite
// both documents; there is no incremental persistence.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

// Document names shared by every store driver.
const (
	ClubsDocument        = "clubs"
	CompetitionsDocument = "competitions"
)

type clubsDoc struct {
	Clubs []model.Club `json:"clubs"`
}

type competitionsDoc struct {
	Competitions []model.Competition `json:"competitions"`
}

// EncodeClubs renders the {"clubs": [...]} document.
func EncodeClubs(clubs []model.Club) ([]byte, error) {
	if clubs == nil {
		clubs = []model.Club{}
	}
	return encodeDocument(clubsDoc{Clubs: clubs})
}

// EncodeCompetitions renders the {"competitions": [...]} document.
func EncodeCompetitions(comps []model.Competition) ([]byte, error) {
	if comps == nil {
		comps = []model.Competition{}
	}
	return encodeDocument(competitionsDoc{Competitions: comps})
}

// DecodeClubs parses a clubs document.  A document without a "clubs" key
// yields an empty collection.
func DecodeClubs(data []byte) ([]model.Club, error) {
	var doc clubsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode clubs document: %w", err)
	}
	if doc.Clubs == nil {
		doc.Clubs = []model.Club{}
	}
	for i := range doc.Clubs {
		if doc.Clubs[i].Bookings == nil {
			doc.Clubs[i].Bookings = []model.Booking{}
		}
	}
	return doc.Clubs, nil
}

// DecodeCompetitions parses a competitions document.
func DecodeCompetitions(data []byte) ([]model.Competition, error) {
	var doc competitionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode competitions document: %w", err)
	}
	if doc.Competitions == nil {
		doc.Competitions = []model.Competition{}
	}
	return doc.Competitions, nil
}

func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
