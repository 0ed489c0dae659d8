package world

import (
	"math"

	"github.com/fragd/server/internal/core/arena"
)

// Mask selects what a trace collides with.
type Mask uint8

const (
	MaskSolid        Mask = iota // world geometry only
	MaskShot                     // world and solid objects
	MaskMonsterSolid             // world and solid, living objects
)

// Trace is the result of sweeping a box from start to end.
type Trace struct {
	Fraction   float64
	EndPos     Vec3
	Hit        arena.Handle
	Normal     Vec3
	Surface    string
	AllSolid   bool
	StartSolid bool
}

// Blocked reports whether anything stopped the sweep.
func (t Trace) Blocked() bool { return t.Fraction < 1 || t.StartSolid }

// distEpsilon keeps end positions off surfaces so the next trace does not
// start inside them.
const distEpsilon = 0.03125

// ClipBox sweeps the box [mins, maxs] from start to end against a solid box
// [bmins, bmaxs]. It returns the fraction of travel before contact (1 when
// unobstructed), the contact normal and start/all-solid flags. Touching a
// face is not a collision.
func ClipBox(start, mins, maxs, end, bmins, bmaxs Vec3) (frac float64, normal Vec3, startSolid, allSolid bool) {
	emin := bmins.Sub(maxs)
	emax := bmaxs.Sub(mins)

	if inside(start, emin, emax) {
		return 0, Vec3{}, true, inside(end, emin, emax)
	}

	enter, exit := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	delta := end.Sub(start)
	for i := 0; i < 3; i++ {
		d := delta[i]
		if math.Abs(d) < 1e-12 {
			if start[i] <= emin[i] || start[i] >= emax[i] {
				return 1, Vec3{}, false, false
			}
			continue
		}
		t1 := (emin[i] - start[i]) / d
		t2 := (emax[i] - start[i]) / d
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > enter {
			enter, axis, sign = t1, i, s
		}
		if t2 < exit {
			exit = t2
		}
	}
	if axis < 0 || enter >= exit || enter < 0 || enter > 1 {
		return 1, Vec3{}, false, false
	}
	length := delta.Len()
	frac = enter
	if length > 0 {
		frac -= distEpsilon / length
	}
	if frac < 0 {
		frac = 0
	}
	normal[axis] = sign
	return frac, normal, false, false
}

func inside(p, mins, maxs Vec3) bool {
	return p[0] > mins[0] && p[0] < maxs[0] &&
		p[1] > mins[1] && p[1] < maxs[1] &&
		p[2] > mins[2] && p[2] < maxs[2]
}

// BoxesOverlap reports whether two world-space boxes intersect.
func BoxesOverlap(amin, amax, bmin, bmax Vec3) bool {
	for i := 0; i < 3; i++ {
		if amin[i] > bmax[i] || amax[i] < bmin[i] {
			return false
		}
	}
	return true
}
