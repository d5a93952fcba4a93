package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the two documents as JSON files on disk, the layout the
// application has always shipped with (clubs.json and competitions.json).
type FileStore struct {
	ClubsPath        string
	CompetitionsPath string
}

// NewFileStore returns a store reading and writing the given paths.
func NewFileStore(clubsPath, competitionsPath string) *FileStore {
	return &FileStore{ClubsPath: clubsPath, CompetitionsPath: competitionsPath}
}

// Load reads both files.  A missing file is an error: the files are the
// only source of clubs and competitions.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	comps, err := readDocument(s.CompetitionsPath, DecodeCompetitions)
	if err != nil {
		return Snapshot{}, err
	}
	clubs, err := readDocument(s.ClubsPath, DecodeClubs)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Clubs: clubs, Competitions: comps}, nil
}

// Save replaces both files.  Each document is first written to a temporary
// file next to its target, so a failed write leaves both files as they were.
// If the clubs rename fails after competitions.json was replaced, the previous
// competitions bytes are put back.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	comps, err := EncodeCompetitions(snap.Competitions)
	if err != nil {
		return fmt.Errorf("encode competitions: %w", err)
	}
	clubs, err := EncodeClubs(snap.Clubs)
	if err != nil {
		return fmt.Errorf("encode clubs: %w", err)
	}

	compsTmp, err := writeTemp(s.CompetitionsPath, comps)
	if err != nil {
		return err
	}
	clubsTmp, err := writeTemp(s.ClubsPath, clubs)
	if err != nil {
		os.Remove(compsTmp)
		return err
	}

	previous, err := os.ReadFile(s.CompetitionsPath)
	existed := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Remove(compsTmp)
		os.Remove(clubsTmp)
		return fmt.Errorf("read %s: %w", s.CompetitionsPath, err)
	}

	if err := os.Rename(compsTmp, s.CompetitionsPath); err != nil {
		os.Remove(compsTmp)
		os.Remove(clubsTmp)
		return fmt.Errorf("write %s: %w", s.CompetitionsPath, err)
	}
	if err := os.Rename(clubsTmp, s.ClubsPath); err != nil {
		os.Remove(clubsTmp)
		werr := fmt.Errorf("write %s: %w", s.ClubsPath, err)
		if rerr := s.restoreCompetitions(previous, existed); rerr != nil {
			return errors.Join(werr, rerr)
		}
		return werr
	}
	return nil
}

func (s *FileStore) restoreCompetitions(previous []byte, existed bool) error {
	if !existed {
		if err := os.Remove(s.CompetitionsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("restore %s: %w", s.CompetitionsPath, err)
		}
		return nil
	}
	tmp, err := writeTemp(s.CompetitionsPath, previous)
	if err != nil {
		return fmt.Errorf("restore %s: %w", s.CompetitionsPath, err)
	}
	if err := os.Rename(tmp, s.CompetitionsPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("restore %s: %w", s.CompetitionsPath, err)
	}
	return nil
}

// writeTemp writes data to a new file in path's directory and returns its
// name.  Nothing is left behind on error.
func writeTemp(path string, data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return name, nil
}

// Close is a no-op; files are opened per call.
func (s *FileStore) Close() error { return nil }

func readDocument[T any](path string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
