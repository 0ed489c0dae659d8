package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleHandle is returned when a handle's slot is dead or has been reused.
	ErrStaleHandle = errors.New("stale handle")
	// ErrReserved is returned when freeing a slot in the reserved range.
	ErrReserved = errors.New("reserved slot")
	// ErrExhausted is returned when no slot is left below the configured maximum.
	ErrExhausted = errors.New("no free slots")
	// ErrSlotInUse is returned when claiming a reserved slot that is already live.
	ErrSlotInUse = errors.New("slot in use")
)

// Fault is a contract violation: a caller bug, not a runtime condition.
// It travels as a panic value up to the per-object tick boundary.
type Fault struct {
	Op     string
	Handle Handle
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("arena %s %s: %v", f.Op, f.Handle, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Raise panics with a Fault wrapping err.
func Raise(op string, h Handle, err error) {
	panic(&Fault{Op: op, Handle: h, Err: err})
}
