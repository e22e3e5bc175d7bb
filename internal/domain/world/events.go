package world

// EventType identifies a unit lifecycle callback from the game
type EventType string

const (
	// UnitCreated fires when a unit starts training or a building is placed
	UnitCreated EventType = "UNIT_CREATED"
	// UnitMorphStarted fires when a unit or building begins morphing into another type
	UnitMorphStarted EventType = "UNIT_MORPH_STARTED"
	// UnitCompleted fires when construction or training finishes
	UnitCompleted EventType = "UNIT_COMPLETED"
	// UnitDestroyed fires when a unit dies or a construction is cancelled
	UnitDestroyed EventType = "UNIT_DESTROYED"
	// UnitDiscovered fires when a unit becomes known to the player
	UnitDiscovered EventType = "UNIT_DISCOVERED"
)

// UnitEvent carries the snapshot of the unit the event is about.
// For UnitDestroyed the snapshot is the last known state before death.
type UnitEvent struct {
	Type  EventType
	Frame int
	Unit  Unit
}

// EventSource delivers the events that happened since the last drain
type EventSource interface {
	DrainEvents() []UnitEvent
}
