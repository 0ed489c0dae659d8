package world

// Brush is an axis-aligned solid volume of map geometry.
type Brush struct {
	Mins    Vec3
	Maxs    Vec3
	Surface string
}

// BoxMap is a map made of axis-aligned brushes. It stands in for a BSP
// collision oracle and is enough for stepping, ledges and occlusion.
type BoxMap struct {
	Name    string
	Brushes []Brush
}

// Trace sweeps a box through the map geometry only. Hit is left empty; the
// caller fills in the world handle when Fraction < 1.
func (m *BoxMap) Trace(start, mins, maxs, end Vec3) Trace {
	best := Trace{Fraction: 1, EndPos: end}
	if m == nil {
		return best
	}
	for i := range m.Brushes {
		b := &m.Brushes[i]
		frac, normal, startSolid, allSolid := ClipBox(start, mins, maxs, end, b.Mins, b.Maxs)
		if startSolid {
			best.StartSolid = true
			if allSolid {
				best.AllSolid = true
			}
			best.Fraction = 0
			best.EndPos = start
			best.Surface = b.Surface
			continue
		}
		if frac < best.Fraction {
			best.Fraction = frac
			best.Normal = normal
			best.Surface = b.Surface
			best.EndPos = start.MA(frac, end.Sub(start))
		}
	}
	return best
}

// PointSolid reports whether p lies strictly inside any brush.
func (m *BoxMap) PointSolid(p Vec3) bool {
	if m == nil {
		return false
	}
	for i := range m.Brushes {
		if inside(p, m.Brushes[i].Mins, m.Brushes[i].Maxs) {
			return true
		}
	}
	return false
}
