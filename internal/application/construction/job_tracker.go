package construction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/metrics"
	"github.com/andrescamacho/rtsbot-go/internal/application/common"
	"github.com/andrescamacho/rtsbot-go/internal/domain/construction"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// Job lifecycle events reported to metrics
const (
	eventCreated    = "created"
	eventStarted    = "started"
	eventCompleted  = "completed"
	eventDestroyed  = "destroyed"
	eventCancelled  = "cancelled"
	eventReassigned = "reassigned"
	eventOrphaned   = "orphaned"
)

// JobTracker runs construction jobs on top of a worker pool. Builders that
// are not reserved go back to mining; builders that die are replaced by the
// nearest spare worker, which resumes or restarts the building.
type JobTracker struct {
	catalog *techtree.Catalog
	pool    *WorkerPool
	jobs    []*construction.Job
	nextID  int
}

// NewJobTracker creates a tracker with an empty worker pool
func NewJobTracker(catalog *techtree.Catalog) *JobTracker {
	return &JobTracker{
		catalog: catalog,
		pool:    NewWorkerPool(),
		nextID:  1,
	}
}

// AddWorker makes a worker available as a builder
func (t *JobTracker) AddWorker(worker shared.UnitID) {
	t.pool.Add(worker)
}

// Tick drops dead workers, sends idle spare workers to the nearest minerals,
// nudges idle builders back to their job and retries orphaned jobs.
func (t *JobTracker) Tick(ctx context.Context, w world.World) {
	logger := common.LoggerFromContext(ctx)

	for _, id := range t.pool.Workers() {
		u, ok := w.Unit(id)
		if !ok || !u.Exists {
			t.workerLost(ctx, w, id)
			continue
		}
		if !u.Idle {
			continue
		}

		if t.pool.IsReserved(id) {
			if job := t.JobForBuilder(id); job != nil {
				if err := t.issue(w, job); buildingGone(job, err) {
					t.dropJob(ctx, w, job)
				} else if err != nil {
					logger.Log(common.LevelDebug, fmt.Sprintf("Builder %s could not resume %s: %v", id, job, err), nil)
				}
			}
			continue
		}

		node, ok := w.NearestResourceNode(u.Position)
		if !ok {
			continue
		}
		if err := w.Gather(id, node.ID); err != nil {
			logger.Log(common.LevelDebug, fmt.Sprintf("Worker %s could not gather: %v", id, err), nil)
		}
	}

	for _, job := range t.jobs {
		if job.IsOrphaned() {
			t.reassign(ctx, w, job)
		}
	}

	metrics.SetWorkerPool(t.pool.Size(), t.pool.ReservedCount())
}

// AddJob starts a building at a location with the nearest spare worker.
// Returns *construction.ErrNoSpareWorker when nobody is free; the request is
// not remembered and the caller retries later.
func (t *JobTracker) AddJob(ctx context.Context, w world.World, ut techtree.UnitType, at shared.TilePosition, orderID string) (*construction.Job, error) {
	worker, ok := t.nearestSpare(w, at.ToPosition())
	if !ok {
		return nil, &construction.ErrNoSpareWorker{TargetType: ut, Location: at}
	}

	job := construction.NewJob(t.nextID, orderID, ut, at)
	job.AssignBuilder(worker)
	if err := t.pool.Reserve(worker, job.ID()); err != nil {
		return nil, err
	}
	if err := w.Build(worker, ut, at); err != nil {
		t.pool.Release(worker)
		return nil, fmt.Errorf("failed to issue build of %s at %s: %w", ut, at, err)
	}

	t.nextID++
	t.jobs = append(t.jobs, job)
	metrics.RecordJobEvent(eventCreated)
	common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("Builder %s assigned to %s at %s", worker, ut, at), map[string]interface{}{
		"job_id":   job.ID(),
		"order_id": orderID,
	})
	return job, nil
}

// OnUnitStarted binds a newly placed building to the first unstarted job of
// its type, preferring the job at the building's tile.
func (t *JobTracker) OnUnitStarted(ctx context.Context, w world.Queries, u world.Unit) {
	if !world.IsOwn(w, u) {
		return
	}

	var match *construction.Job
	for _, job := range t.jobs {
		if job.HasStarted() || job.TargetType() != u.Type {
			continue
		}
		if job.Location().Equals(u.Tile) {
			match = job
			break
		}
		if match == nil {
			match = job
		}
	}
	if match == nil {
		return
	}
	if err := match.BindBuilding(u.ID); err != nil {
		return
	}
	metrics.RecordJobEvent(eventStarted)
	common.LoggerFromContext(ctx).Log(common.LevelDebug, fmt.Sprintf("Construction started: %s", match), nil)
}

// OnUnitCompleted adds finished workers to the pool and closes the job whose
// building completed.
func (t *JobTracker) OnUnitCompleted(ctx context.Context, w world.Queries, u world.Unit) {
	if !world.IsOwn(w, u) {
		return
	}

	if spec, err := t.catalog.Unit(u.Type); err == nil && spec.IsWorker {
		t.pool.Add(u.ID)
	}

	for _, job := range t.jobs {
		if job.StartedBuilding() == u.ID {
			t.closeJob(job)
			metrics.RecordJobEvent(eventCompleted)
			common.LoggerFromContext(ctx).Log(common.LevelInfo, fmt.Sprintf("Construction complete: %s at %s", u.Type, job.Location()), nil)
			return
		}
	}
}

// OnUnitDestroyed replaces dead builders and drops jobs whose building was destroyed
func (t *JobTracker) OnUnitDestroyed(ctx context.Context, w world.World, u world.Unit) {
	if !world.IsOwn(w, u) {
		return
	}

	if t.pool.Contains(u.ID) {
		t.workerLost(ctx, w, u.ID)
		return
	}

	if !t.catalog.IsWorkerBuilt(u.Type) {
		return
	}
	for _, job := range t.jobs {
		if job.StartedBuilding() == u.ID {
			t.dropJob(ctx, w, job)
			return
		}
	}
}

// dropJob closes a job whose building is gone and sends its builder back to mining
func (t *JobTracker) dropJob(ctx context.Context, w world.World, job *construction.Job) {
	builder := job.Builder()
	t.closeJob(job)
	metrics.RecordJobEvent(eventDestroyed)
	common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("Building under construction destroyed: %s", job), nil)
	if !builder.IsZero() {
		t.sendToMinerals(w, builder)
	}
}

// buildingGone reports whether err says the job's started building no longer exists
func buildingGone(job *construction.Job, err error) bool {
	var notFound *shared.UnitNotFoundError
	return job.HasStarted() && errors.As(err, &notFound) && notFound.UnitID == job.StartedBuilding()
}

// CancelJob stops the job building t at a location: a started building is
// halted, otherwise the builder's command is cancelled. Returns false if no
// job matches.
func (t *JobTracker) CancelJob(ctx context.Context, w world.World, ut techtree.UnitType, at shared.TilePosition) bool {
	for _, job := range t.jobs {
		if job.Matches(ut, at) {
			t.cancel(ctx, w, job)
			return true
		}
	}
	return false
}

// RemoveJobsForOrder cancels every job backing a production order
func (t *JobTracker) RemoveJobsForOrder(ctx context.Context, w world.World, orderID string) int {
	n := 0
	for _, job := range t.Jobs() {
		if job.OrderID() == orderID {
			t.cancel(ctx, w, job)
			n++
		}
	}
	return n
}

func (t *JobTracker) cancel(ctx context.Context, w world.World, job *construction.Job) {
	var err error
	if job.HasStarted() {
		err = w.HaltConstruction(job.StartedBuilding())
	} else if !job.IsOrphaned() {
		err = w.CancelConstruction(job.Builder())
	}
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("Cancel of %s was rejected: %v", job, err), nil)
	}
	t.closeJob(job)
	metrics.RecordJobEvent(eventCancelled)
}

// workerLost removes a worker and, if it held a job, hands the job to a replacement
func (t *JobTracker) workerLost(ctx context.Context, w world.World, worker shared.UnitID) {
	jobID, reserved := t.pool.JobOf(worker)
	t.pool.Remove(worker)
	if !reserved {
		return
	}
	job := t.job(jobID)
	if job == nil {
		return
	}
	job.ClearBuilder()
	common.LoggerFromContext(ctx).Log(common.LevelWarn, fmt.Sprintf("Builder %s lost, reassigning %s", worker, job), nil)
	t.reassign(ctx, w, job)
}

// reassign gives an orphaned job to the nearest spare worker. A started
// building is resumed, an unstarted one is ordered again.
func (t *JobTracker) reassign(ctx context.Context, w world.World, job *construction.Job) {
	logger := common.LoggerFromContext(ctx)

	worker, ok := t.nearestSpare(w, job.Location().ToPosition())
	if !ok {
		metrics.RecordJobEvent(eventOrphaned)
		logger.Log(common.LevelDebug, fmt.Sprintf("No replacement builder for %s", job), nil)
		return
	}
	if err := t.pool.Reserve(worker, job.ID()); err != nil {
		return
	}
	job.AssignBuilder(worker)

	if err := t.issue(w, job); err != nil {
		t.pool.Release(worker)
		job.ClearBuilder()
		if buildingGone(job, err) {
			t.dropJob(ctx, w, job)
			return
		}
		logger.Log(common.LevelWarn, fmt.Sprintf("Replacement builder %s rejected for %s: %v", worker, job, err), nil)
		return
	}
	metrics.RecordJobEvent(eventReassigned)
	logger.Log(common.LevelInfo, fmt.Sprintf("Builder %s took over %s", worker, job), map[string]interface{}{
		"reassignments": job.Reassignments(),
	})
}

// issue sends the job's builder to work: assist if the building exists, build otherwise
func (t *JobTracker) issue(w world.World, job *construction.Job) error {
	if job.HasStarted() {
		return w.Resume(job.Builder(), job.StartedBuilding())
	}
	return w.Build(job.Builder(), job.TargetType(), job.Location())
}

func (t *JobTracker) closeJob(job *construction.Job) {
	if !job.IsOrphaned() {
		t.pool.Release(job.Builder())
	}
	for i, j := range t.jobs {
		if j == job {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return
		}
	}
}

func (t *JobTracker) sendToMinerals(w world.World, worker shared.UnitID) {
	u, ok := w.Unit(worker)
	if !ok || !u.Exists {
		return
	}
	if node, ok := w.NearestResourceNode(u.Position); ok {
		_ = w.Gather(worker, node.ID)
	}
}

// nearestSpare finds the closest pool worker that exists, is gathering and
// is not reserved. Ties go to the earlier pool member.
func (t *JobTracker) nearestSpare(w world.Queries, to shared.Position) (shared.UnitID, bool) {
	best := shared.NoUnit
	bestDist := math.MaxFloat64
	for _, id := range t.pool.Workers() {
		if t.pool.IsReserved(id) {
			continue
		}
		u, ok := w.Unit(id)
		if !ok || !u.Exists || !u.Gathering {
			continue
		}
		if d := u.Position.Distance(to); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, !best.IsZero()
}

func (t *JobTracker) job(id int) *construction.Job {
	for _, j := range t.jobs {
		if j.ID() == id {
			return j
		}
	}
	return nil
}

// Queries

// Jobs returns a snapshot of open jobs in creation order
func (t *JobTracker) Jobs() []*construction.Job {
	out := make([]*construction.Job, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Builders returns every worker in the pool
func (t *JobTracker) Builders() []shared.UnitID {
	return t.pool.Workers()
}

// Pool exposes the worker pool for inspection
func (t *JobTracker) Pool() *WorkerPool {
	return t.pool
}

// JobForBuilder returns the job a worker is reserved for, or nil
func (t *JobTracker) JobForBuilder(worker shared.UnitID) *construction.Job {
	jobID, ok := t.pool.JobOf(worker)
	if !ok {
		return nil
	}
	return t.job(jobID)
}

// SpareWorkers lists workers that could take a new job right now
func (t *JobTracker) SpareWorkers(w world.Queries) []shared.UnitID {
	var out []shared.UnitID
	for _, id := range t.pool.Workers() {
		if t.pool.IsReserved(id) {
			continue
		}
		if u, ok := w.Unit(id); ok && u.Exists && u.Gathering {
			out = append(out, id)
		}
	}
	return out
}
