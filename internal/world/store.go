package world

import (
	"fmt"

	"github.com/fragd/server/internal/core/arena"
)

// Store owns all object storage. Objects live in a fixed slice sized to the
// configured maximum, so *Object pointers stay stable for the process
// lifetime; validity is always checked through the handle generation.
type Store struct {
	pool     *arena.Pool
	objects  []Object
	deferred []arena.Handle
}

func NewStore(policy arena.Policy) *Store {
	pool := arena.NewPool(policy)
	s := &Store{
		pool:     pool,
		objects:  make([]Object, pool.Policy().Max),
		deferred: make([]arena.Handle, 0, 32),
	}
	s.objects[0] = Object{
		Self:      pool.World(),
		InUse:     true,
		Kind:      KindWorld,
		ClassName: "worldspawn",
		Solid:     SolidBBox,
		MoveType:  MovePush,
	}
	return s
}

func (s *Store) Pool() *arena.Pool { return s.pool }
func (s *Store) World() *Object    { return &s.objects[0] }
func (s *Store) Cap() int          { return len(s.objects) }

// Allocate returns a clean object in a fresh or reused slot.
func (s *Store) Allocate(now Tick) (*Object, error) {
	h, err := s.pool.Allocate(uint64(now))
	if err != nil {
		return nil, err
	}
	return s.reset(h), nil
}

// MustAllocate treats exhaustion as a configuration fault.
func (s *Store) MustAllocate(now Tick) *Object {
	o, err := s.Allocate(now)
	if err != nil {
		arena.Raise("allocate", arena.None, err)
	}
	return o
}

func (s *Store) reset(h arena.Handle) *Object {
	o := &s.objects[h.Index()]
	*o = Object{
		Self:     h,
		InUse:    true,
		Kind:     KindWorld,
		MoveType: MoveNone,
		Mass:     200,
	}
	return o
}

// ClaimPlayer activates reserved player slot n.
func (s *Store) ClaimPlayer(n int) (*Object, error) {
	h, err := s.pool.Claim(n)
	if err != nil {
		return nil, fmt.Errorf("claim player %d: %w", n, err)
	}
	o := s.reset(h)
	o.Client = &ClientState{}
	return o, nil
}

// ReleasePlayer frees a reserved player slot.
func (s *Store) ReleasePlayer(h arena.Handle, now Tick) error {
	if err := s.pool.Release(h, uint64(now)); err != nil {
		return err
	}
	s.objects[h.Index()] = Object{}
	return nil
}

// Free unlinks and clears a slot. Dead and reserved handles are errors.
func (s *Store) Free(h arena.Handle, now Tick) error {
	if err := s.pool.Free(h, uint64(now)); err != nil {
		return err
	}
	s.objects[h.Index()] = Object{}
	return nil
}

// Get dereferences a handle, failing on a dead or reused slot.
func (s *Store) Get(h arena.Handle) (*Object, error) {
	if !s.pool.Alive(h) {
		return nil, arena.ErrStaleHandle
	}
	return &s.objects[h.Index()], nil
}

// MustGet dereferences a handle the caller guarantees to be live.
func (s *Store) MustGet(h arena.Handle) *Object {
	o, err := s.Get(h)
	if err != nil {
		arena.Raise("dereference", h, err)
	}
	return o
}

// Lookup is the soft form of Get: nil for a dead handle. Used for stored
// references such as enemies, which may die between ticks.
func (s *Store) Lookup(h arena.Handle) *Object {
	if !s.pool.Alive(h) {
		return nil
	}
	return &s.objects[h.Index()]
}

// Each visits every live object in ascending slot order.
func (s *Store) Each(fn func(*Object)) {
	s.pool.Each(func(h arena.Handle) {
		fn(&s.objects[h.Index()])
	})
}

// Players visits every live player object.
func (s *Store) Players(fn func(*Object)) {
	for i := 1; i <= s.pool.Policy().Reserved; i++ {
		if h, live := s.pool.At(uint32(i)); live {
			fn(&s.objects[h.Index()])
		}
	}
}

// Defer queues a free for the next Flush.
func (s *Store) Defer(h arena.Handle) {
	s.deferred = append(s.deferred, h)
}

// Pending reports whether h is queued for freeing.
func (s *Store) Pending(h arena.Handle) bool {
	for _, d := range s.deferred {
		if d == h {
			return true
		}
	}
	return false
}

// Flush frees all deferred handles. Handles already dead are skipped; any
// other failure is collected and returned.
func (s *Store) Flush(now Tick) []error {
	var errs []error
	for _, h := range s.deferred {
		if !s.pool.Alive(h) {
			continue
		}
		var err error
		if s.pool.Reserved(h) {
			err = s.ReleasePlayer(h, now)
		} else {
			err = s.Free(h, now)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("free %s: %w", h, err))
		}
	}
	s.deferred = s.deferred[:0]
	return errs
}

// Adopt places o into its recorded slot, keeping its handle valid.
func (s *Store) Adopt(o Object) error {
	if o.Self.Index() == 0 {
		s.objects[0] = o
		return nil
	}
	if err := s.pool.Adopt(o.Self); err != nil {
		return fmt.Errorf("adopt %s: %w", o.Self, err)
	}
	o.InUse = true
	s.objects[o.Self.Index()] = o
	return nil
}

// Clear frees every non-world object, players included.
func (s *Store) Clear(now Tick) {
	var live []arena.Handle
	s.pool.Each(func(h arena.Handle) {
		if h.Index() != 0 {
			live = append(live, h)
		}
	})
	for _, h := range live {
		if s.pool.Reserved(h) {
			_ = s.ReleasePlayer(h, now)
		} else {
			_ = s.Free(h, now)
		}
	}
	s.deferred = s.deferred[:0]
}
