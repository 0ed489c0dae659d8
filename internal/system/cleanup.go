package system

import (
	"time"

	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/sim"
	"go.uber.org/zap"
)

// crowdedPercent is the arena occupancy that gets a warning.
const crowdedPercent = 90

// CleanupSystem flushes the deferred free queue at tick end and warns when
// the arena runs low on slots. Phase 5 (Cleanup).
type CleanupSystem struct {
	c       *sim.Context
	crowded bool
}

func NewCleanupSystem(c *sim.Context) *CleanupSystem {
	return &CleanupSystem{c: c}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.c.Flush()

	pool := s.c.Objects.Pool()
	limit := pool.Policy().Max
	crowded := pool.Live()*100 >= limit*crowdedPercent
	if crowded && !s.crowded {
		s.c.Log.Warn("object arena nearly full",
			zap.Int("live", pool.Live()),
			zap.Int("max", limit),
			zap.Uint32("high_water", pool.HighWater()))
	}
	s.crowded = crowded
}
