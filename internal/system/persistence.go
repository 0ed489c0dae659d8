package system

import (
	"context"
	"time"

	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/savegame"
	"github.com/fragd/server/internal/sim"
	"go.uber.org/zap"
)

// SnapshotSaver is the part of a save store the autosave needs.
type SnapshotSaver interface {
	Save(ctx context.Context, s *savegame.Snapshot) error
	Prune(ctx context.Context, level string, keep int) (int64, error)
}

// keepSnapshots is how many autosaves of a level survive pruning.
const keepSnapshots = 5

// PersistenceSystem periodically captures the level and writes it to the
// save store. Phase 4 (Persist).
type PersistenceSystem struct {
	c         *sim.Context
	store     SnapshotSaver
	level     string
	tickCount int
	interval  int // auto-save every N ticks
}

func NewPersistenceSystem(c *sim.Context, store SnapshotSaver, level string, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		c:        c,
		store:    store,
		level:    level,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Save()
}

// Save writes a snapshot immediately. Called on graceful shutdown so no
// progress since the last autosave is lost.
func (s *PersistenceSystem) Save() *savegame.Snapshot {
	snap := savegame.Capture(s.c, s.level)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Save(ctx, snap); err != nil {
		s.c.Log.Error("autosave failed", zap.String("level", s.level), zap.Error(err))
		return nil
	}
	if n, err := s.store.Prune(ctx, s.level, keepSnapshots); err != nil {
		s.c.Log.Warn("prune snapshots failed", zap.String("level", s.level), zap.Error(err))
	} else if n > 0 {
		s.c.Log.Debug("pruned snapshots", zap.Int64("deleted", n))
	}
	s.c.Log.Info("level saved",
		zap.String("snapshot", snap.ID),
		zap.String("level", s.level),
		zap.Int("objects", len(snap.Objects)))
	return snap
}
