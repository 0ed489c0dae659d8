package world

// Behavior references stored on objects are registry kind IDs, never function
// values, so saved state can carry a stable name for each. Zero means none.
type (
	ThinkID uint16
	PainID  uint16
	DieID   uint16
	UseID   uint16
	TouchID uint16
	EventID uint16
	EndID   uint16
	ClassID uint16
	MoveID  uint16
)
