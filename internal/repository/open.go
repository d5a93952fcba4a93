package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/club-booking/internal/database"
)

// Store drivers accepted by OpenStore.
const (
	DriverFile  = "file"
	DriverBolt  = "bolt"
	DriverMySQL = "mysql"
)

// StoreOptions selects and configures a store driver.
type StoreOptions struct {
	Driver           string
	ClubsPath        string
	CompetitionsPath string
	BoltPath         string
	MySQL            database.Options
}

// OpenStore builds the Store for opts.Driver.  An empty driver means the
// JSON file store.
func OpenStore(ctx context.Context, opts StoreOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverFile:
		return NewFileStore(opts.ClubsPath, opts.CompetitionsPath), nil
	case DriverBolt:
		return NewBoltStore(opts.BoltPath)
	case DriverMySQL:
		db, err := database.Open(ctx, opts.MySQL)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		store, err := NewMySQLStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
