package world

import (
	"errors"
	"fmt"
)

// ErrFrameRange reports a move table whose frames do not match its range.
var ErrFrameRange = errors.New("frame out of range")

// AIKind is the closed set of per-frame locomotion functions.
type AIKind uint8

const (
	AINone   AIKind = iota
	AIMove          // step along facing without turning
	AIStand         // idle, look for targets
	AIWalk          // patrol toward goal, look for targets
	AIRun           // pursue enemy, decide to attack
	AICharge        // face enemy and close in while attacking
	AITurn          // face enemy only
)

var aiNames = [...]string{"none", "move", "stand", "walk", "run", "charge", "turn"}

func (k AIKind) String() string {
	if int(k) < len(aiNames) {
		return aiNames[k]
	}
	return fmt.Sprintf("ai(%d)", k)
}

// Frame is one step of a move.
type Frame struct {
	AI    AIKind
	Dist  float64
	Event EventID
}

// Move is an immutable animation/behavior unit. Frame indexes are absolute
// model frames in [First, Last]; Frames[i] describes frame First+i.
type Move struct {
	Name   string
	First  int
	Last   int
	Frames []Frame
	End    EndID
}

// Validate checks that the frame table covers exactly [First, Last].
func (m *Move) Validate() error {
	if m.Last < m.First {
		return fmt.Errorf("move %s: last %d before first %d: %w", m.Name, m.Last, m.First, ErrFrameRange)
	}
	if n := m.Last - m.First + 1; n != len(m.Frames) {
		return fmt.Errorf("move %s: %d frames for range %d-%d: %w", m.Name, len(m.Frames), m.First, m.Last, ErrFrameRange)
	}
	return nil
}

// Contains reports whether frame lies inside the move.
func (m *Move) Contains(frame int) bool {
	return frame >= m.First && frame <= m.Last
}

// At returns the descriptor for an absolute frame index.
func (m *Move) At(frame int) (Frame, error) {
	if !m.Contains(frame) {
		return Frame{}, fmt.Errorf("move %s frame %d: %w", m.Name, frame, ErrFrameRange)
	}
	return m.Frames[frame-m.First], nil
}

// Len is the number of frames.
func (m *Move) Len() int { return m.Last - m.First + 1 }
