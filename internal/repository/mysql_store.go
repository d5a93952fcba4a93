package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MySQLStore keeps each document as one row of the club_booking_documents
// table.  The body is the exact JSON the file store would write, so a
// database dump can be copied straight back into clubs.json and
// competitions.json.
type MySQLStore struct {
	db *sql.DB
}

const createDocumentsTable = `CREATE TABLE IF NOT EXISTS club_booking_documents (
	name       VARCHAR(32) NOT NULL PRIMARY KEY,
	body       LONGTEXT    NOT NULL,
	updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) CHARACTER SET utf8mb4`

// NewMySQLStore wraps an open connection and creates the documents table
// when it does not exist yet.
func NewMySQLStore(ctx context.Context, db *sql.DB) (*MySQLStore, error) {
	if _, err := db.ExecContext(ctx, createDocumentsTable); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

// Load reads both documents; a missing row loads as an empty collection.
func (s *MySQLStore) Load(ctx context.Context) (Snapshot, error) {
	clubsRaw, err := s.body(ctx, ClubsDocument)
	if err != nil {
		return Snapshot{}, err
	}
	compsRaw, err := s.body(ctx, CompetitionsDocument)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if snap.Clubs, err = DecodeClubs(orEmptyDocument(clubsRaw, ClubsDocument)); err != nil {
		return Snapshot{}, err
	}
	if snap.Competitions, err = DecodeCompetitions(orEmptyDocument(compsRaw, CompetitionsDocument)); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *MySQLStore) body(ctx context.Context, name string) ([]byte, error) {
	const q = "SELECT body FROM club_booking_documents WHERE name = ?"
	var body string
	if err := s.db.QueryRowContext(ctx, q, name).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %s document: %w", name, err)
	}
	return []byte(body), nil
}

// Save upserts both rows inside one transaction.
func (s *MySQLStore) Save(ctx context.Context, snap Snapshot) error {
	clubs, err := EncodeClubs(snap.Clubs)
	if err != nil {
		return fmt.Errorf("encode clubs: %w", err)
	}
	comps, err := EncodeCompetitions(snap.Competitions)
	if err != nil {
		return fmt.Errorf("encode competitions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO club_booking_documents (name, body) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body)`
	if _, err := tx.ExecContext(ctx, q, CompetitionsDocument, string(comps)); err != nil {
		return fmt.Errorf("save competitions document: %w", err)
	}
	if _, err := tx.ExecContext(ctx, q, ClubsDocument, string(clubs)); err != nil {
		return fmt.Errorf("save clubs document: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error { return s.db.Close() }

func orEmptyDocument(raw []byte, name string) []byte {
	if raw != nil {
		return raw
	}
	return []byte(`{"` + name + `": []}`)
}
