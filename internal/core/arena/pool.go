package arena

// Unlinker is implemented by indexes that hold handles (the spatial grid) so
// the Pool can detach a slot from all of them before it is cleared.
type Unlinker interface {
	Unlink(h Handle)
}

type slotState struct {
	generation uint32
	live       bool
	freedAt    uint64
}

// Policy configures slot reuse. All values are in simulation ticks.
type Policy struct {
	Max        int    // total slots including the world slot and reserved slots
	Reserved   int    // slots [1, Reserved] belong to players
	Quarantine uint64 // minimum dead time before a slot is preferred for reuse
	Warmup     uint64 // before this tick any dead slot is reusable
}

// Pool manages slot allocation with generational handles and a quarantine
// window. Slot 0 is the world and is always live.
type Pool struct {
	slots     []slotState
	policy    Policy
	highWater uint32
	live      int
	unlinkers []Unlinker
}

func NewPool(policy Policy) *Pool {
	if policy.Max < policy.Reserved+2 {
		policy.Max = policy.Reserved + 2
	}
	p := &Pool{
		slots:     make([]slotState, policy.Max),
		policy:    policy,
		highWater: uint32(policy.Reserved + 1),
	}
	for i := range p.slots {
		p.slots[i].generation = 1
	}
	p.slots[0].live = true
	p.live = 1
	return p
}

// AddUnlinker registers an index that must forget a handle on free.
func (p *Pool) AddUnlinker(u Unlinker) {
	p.unlinkers = append(p.unlinkers, u)
}

func (p *Pool) Policy() Policy    { return p.policy }
func (p *Pool) HighWater() uint32 { return p.highWater }
func (p *Pool) Live() int         { return p.live }

// World returns the handle of slot 0.
func (p *Pool) World() Handle {
	return NewHandle(0, p.slots[0].generation)
}

// Allocate returns a handle to a reusable or newly extended slot.
//
// During warm-up any dead slot is taken. Afterwards the first slot that has
// been dead for at least the quarantine window wins, then the oldest dead
// slot, and only when no dead slot exists is the high-water mark extended.
func (p *Pool) Allocate(now uint64) (Handle, error) {
	oldest := -1
	for i := uint32(p.policy.Reserved + 1); i < p.highWater; i++ {
		s := &p.slots[i]
		if s.live {
			continue
		}
		if now < p.policy.Warmup || (now >= s.freedAt && now-s.freedAt >= p.policy.Quarantine) {
			return p.activate(i), nil
		}
		if oldest < 0 || s.freedAt < p.slots[oldest].freedAt {
			oldest = int(i)
		}
	}
	if oldest >= 0 {
		return p.activate(uint32(oldest)), nil
	}
	if int(p.highWater) >= len(p.slots) {
		return None, ErrExhausted
	}
	idx := p.highWater
	p.highWater++
	return p.activate(idx), nil
}

func (p *Pool) activate(idx uint32) Handle {
	s := &p.slots[idx]
	s.live = true
	p.live++
	return NewHandle(idx, s.generation)
}

// Claim activates reserved slot n (1-based player number).
func (p *Pool) Claim(n int) (Handle, error) {
	if n < 1 || n > p.policy.Reserved {
		return None, ErrReserved
	}
	s := &p.slots[n]
	if s.live {
		return None, ErrSlotInUse
	}
	return p.activate(uint32(n)), nil
}

// Alive reports whether h refers to the current occupant of a live slot.
func (p *Pool) Alive(h Handle) bool {
	idx := h.Index()
	if h.IsZero() || idx >= p.highWater {
		return false
	}
	s := &p.slots[idx]
	return s.live && s.generation == h.Generation()
}

// Reserved reports whether h falls in the world or player range.
func (p *Pool) Reserved(h Handle) bool {
	return int(h.Index()) <= p.policy.Reserved
}

// Free marks a non-reserved slot dead. Stale handles and the reserved range
// are contract violations reported as errors.
func (p *Pool) Free(h Handle, now uint64) error {
	if p.Reserved(h) {
		return ErrReserved
	}
	return p.release(h, now)
}

// Release frees a reserved player slot.
func (p *Pool) Release(h Handle, now uint64) error {
	idx := int(h.Index())
	if idx < 1 || idx > p.policy.Reserved {
		return ErrReserved
	}
	return p.release(h, now)
}

func (p *Pool) release(h Handle, now uint64) error {
	if !p.Alive(h) {
		return ErrStaleHandle
	}
	for _, u := range p.unlinkers {
		u.Unlink(h)
	}
	s := &p.slots[h.Index()]
	s.live = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	s.freedAt = now
	p.live--
	return nil
}

// Each visits every live handle in ascending slot order. Slots freed during
// the walk are skipped; slots allocated during the walk are visited if they
// lie ahead of the cursor.
func (p *Pool) Each(fn func(Handle)) {
	for i := uint32(0); i < p.highWater; i++ {
		s := &p.slots[i]
		if s.live {
			fn(NewHandle(i, s.generation))
		}
	}
}

// At returns the current handle of slot idx and whether it is live.
func (p *Pool) At(idx uint32) (Handle, bool) {
	if idx >= p.highWater {
		return None, false
	}
	s := &p.slots[idx]
	return NewHandle(idx, s.generation), s.live
}

// Adopt makes h live exactly as recorded, extending the high-water mark as
// needed. Used when restoring saved state so stored handles stay valid.
func (p *Pool) Adopt(h Handle) error {
	idx := h.Index()
	if h.IsZero() || int(idx) >= len(p.slots) {
		return ErrExhausted
	}
	s := &p.slots[idx]
	if s.live {
		if s.generation == h.Generation() && idx == 0 {
			return nil
		}
		return ErrSlotInUse
	}
	s.generation = h.Generation()
	s.live = true
	p.live++
	if idx >= p.highWater {
		p.highWater = idx + 1
	}
	return nil
}
