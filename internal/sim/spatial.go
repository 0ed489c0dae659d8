package sim

import (
	"math"
	"sort"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/world"
)

// Spatial answers geometry queries against the level and linked objects.
type Spatial interface {
	Trace(start, mins, maxs, end world.Vec3, ignore arena.Handle, mask world.Mask) world.Trace
	QueryRegion(center world.Vec3, radius float64) []arena.Handle
}

// WorldSpatial combines static box geometry with the object grid.
type WorldSpatial struct {
	Map     *world.BoxMap
	Grid    *world.Grid
	Objects *world.Store
}

// Trace sweeps a box from start to end. MaskSolid stops only on level
// geometry; the other masks also clip against solid objects. The ignored
// object, objects it owns and its own owner never block.
func (s *WorldSpatial) Trace(start, mins, maxs, end world.Vec3, ignore arena.Handle, mask world.Mask) world.Trace {
	var tr world.Trace
	if s.Map != nil {
		tr = s.Map.Trace(start, mins, maxs, end)
	} else {
		tr = world.Trace{Fraction: 1, EndPos: end}
	}
	if tr.Blocked() {
		tr.Hit = s.Objects.World().Self
	}
	if mask == world.MaskSolid || tr.AllSolid {
		return tr
	}

	var ignoreOwner arena.Handle
	if o := s.Objects.Lookup(ignore); o != nil {
		ignoreOwner = o.Owner
	}
	var lo, hi world.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = math.Min(start[i], end[i]) + mins[i]
		hi[i] = math.Max(start[i], end[i]) + maxs[i]
	}
	cands := s.sorted(s.Grid.Query(lo, hi))
	delta := end.Sub(start)
	for _, h := range cands {
		if h == ignore || (!ignoreOwner.IsZero() && h == ignoreOwner) {
			continue
		}
		o := s.Objects.Lookup(h)
		if o == nil || o.Solid != world.SolidBBox || o.Kind == world.KindCorpse {
			continue
		}
		if !ignore.IsZero() && o.Owner == ignore {
			continue
		}
		if mask == world.MaskMonsterSolid && o.IsPlayer() && !o.Alive() {
			continue
		}
		frac, normal, startSolid, allSolid := world.ClipBox(start, mins, maxs, end, o.AbsMin(), o.AbsMax())
		if startSolid {
			tr.StartSolid = true
			tr.AllSolid = allSolid
			tr.Hit = h
			tr.Fraction = 0
			tr.EndPos = start
			tr.Normal = world.Vec3{}
			tr.Surface = ""
			return tr
		}
		if frac < tr.Fraction {
			tr.Fraction = frac
			tr.EndPos = start.MA(frac, delta)
			tr.Normal = normal
			tr.Hit = h
			tr.Surface = ""
		}
	}
	return tr
}

// QueryRegion returns the solid objects whose bounding box center lies
// within radius of center, in slot order.
func (s *WorldSpatial) QueryRegion(center world.Vec3, radius float64) []arena.Handle {
	r := world.Vec3{radius, radius, radius}
	cands := s.sorted(s.Grid.Query(center.Sub(r), center.Add(r)))
	out := cands[:0]
	for _, h := range cands {
		o := s.Objects.Lookup(h)
		if o == nil || o.Solid == world.SolidNot {
			continue
		}
		if center.Sub(o.Center()).Len() > radius {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (s *WorldSpatial) sorted(hs []arena.Handle) []arena.Handle {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Index() < hs[j].Index() })
	return hs
}
