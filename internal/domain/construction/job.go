package construction

import (
	"fmt"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// Job is one building under construction by a worker. The builder may be
// replaced if it dies; the job ends when the building completes, is
// destroyed, or is cancelled.
type Job struct {
	id              int
	orderID         string
	targetType      techtree.UnitType
	location        shared.TilePosition
	builder         shared.UnitID
	startedBuilding shared.UnitID
	reassignments   int
	everAssigned    bool
}

// NewJob creates a job for a building at a location. orderID links the job to
// the production order it fulfils and may be empty.
func NewJob(id int, orderID string, t techtree.UnitType, at shared.TilePosition) *Job {
	return &Job{
		id:         id,
		orderID:    orderID,
		targetType: t,
		location:   at,
	}
}

func (j *Job) ID() int                        { return j.id }
func (j *Job) OrderID() string                { return j.orderID }
func (j *Job) TargetType() techtree.UnitType  { return j.targetType }
func (j *Job) Location() shared.TilePosition  { return j.location }
func (j *Job) Builder() shared.UnitID         { return j.builder }
func (j *Job) StartedBuilding() shared.UnitID { return j.startedBuilding }
func (j *Job) Reassignments() int             { return j.reassignments }
func (j *Job) HasStarted() bool               { return !j.startedBuilding.IsZero() }
func (j *Job) IsOrphaned() bool               { return j.builder.IsZero() }

// AssignBuilder binds a worker. Every assignment after the first counts as a reassignment.
func (j *Job) AssignBuilder(worker shared.UnitID) {
	if j.everAssigned {
		j.reassignments++
	}
	j.everAssigned = true
	j.builder = worker
}

// ClearBuilder unbinds the builder, leaving the job orphaned
func (j *Job) ClearBuilder() {
	j.builder = shared.NoUnit
}

// BindBuilding records the building the game placed for this job
func (j *Job) BindBuilding(building shared.UnitID) error {
	if j.HasStarted() {
		return fmt.Errorf("job %d already bound to building %s", j.id, j.startedBuilding)
	}
	j.startedBuilding = building
	return nil
}

// Matches reports whether the job builds type t at tile at
func (j *Job) Matches(t techtree.UnitType, at shared.TilePosition) bool {
	return j.targetType == t && j.location.Equals(at)
}

func (j *Job) String() string {
	s := fmt.Sprintf("job %d: %s at %s builder %s", j.id, j.targetType, j.location, j.builder)
	if j.HasStarted() {
		s += " building " + j.startedBuilding.String()
	}
	return s
}
