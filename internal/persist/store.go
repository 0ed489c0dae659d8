package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/fragd/server/internal/config"
	"github.com/fragd/server/internal/savegame"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Store keeps savegame snapshots.
type Store interface {
	Save(ctx context.Context, s *savegame.Snapshot) error
	Load(ctx context.Context, id string) (*savegame.Snapshot, error)
	// Latest returns the newest snapshot of a level.
	Latest(ctx context.Context, level string) (*savegame.Snapshot, error)
	// Prune deletes all but the newest keep snapshots of a level.
	Prune(ctx context.Context, level string, keep int) (int64, error)
	Close() error
}

// Open connects the store named by cfg.Driver. The "none" driver returns a
// nil Store and no error.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool, log); err != nil {
			db.Close()
			return nil, err
		}
		return NewSnapshotRepo(db), nil
	case "sqlite":
		st, err := OpenSQLite(cfg.SqlitePath, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("open store: unknown driver %q", cfg.Driver)
}
