package construction

import (
	"fmt"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// ErrNoSpareWorker is returned when no gathering, unreserved worker can take a job
type ErrNoSpareWorker struct {
	TargetType techtree.UnitType
	Location   shared.TilePosition
}

func (e *ErrNoSpareWorker) Error() string {
	return fmt.Sprintf("no spare worker to build %s at %s", e.TargetType, e.Location)
}

// ErrWorkerReserved is returned when reserving a worker that already holds a job
type ErrWorkerReserved struct {
	Worker shared.UnitID
	JobID  int
}

func (e *ErrWorkerReserved) Error() string {
	return fmt.Sprintf("worker %s is already reserved by job %d", e.Worker, e.JobID)
}
