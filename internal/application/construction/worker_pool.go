package construction

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/construction"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
)

// WorkerPool is the set of workers the tracker may use as builders, with an
// explicit reservation map. A reserved worker belongs to a job and is never
// offered as spare, whatever it is doing in game.
type WorkerPool struct {
	workers  []shared.UnitID // insertion order
	members  map[shared.UnitID]bool
	reserved map[shared.UnitID]int // worker -> job id
	byJob    map[int]shared.UnitID // job id -> worker
}

// NewWorkerPool creates an empty pool
func NewWorkerPool() *WorkerPool {
	return &WorkerPool{
		members:  make(map[shared.UnitID]bool),
		reserved: make(map[shared.UnitID]int),
		byJob:    make(map[int]shared.UnitID),
	}
}

// Add registers a worker. Adding a known worker is a no-op.
func (p *WorkerPool) Add(worker shared.UnitID) bool {
	if p.members[worker] {
		return false
	}
	p.members[worker] = true
	p.workers = append(p.workers, worker)
	return true
}

// Remove forgets a worker and drops its reservation
func (p *WorkerPool) Remove(worker shared.UnitID) {
	if !p.members[worker] {
		return
	}
	delete(p.members, worker)
	p.Release(worker)
	for i, w := range p.workers {
		if w == worker {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			break
		}
	}
}

// Contains reports whether the worker is in the pool
func (p *WorkerPool) Contains(worker shared.UnitID) bool {
	return p.members[worker]
}

// Reserve binds a worker to a job
func (p *WorkerPool) Reserve(worker shared.UnitID, jobID int) error {
	if current, ok := p.reserved[worker]; ok && current != jobID {
		return &construction.ErrWorkerReserved{Worker: worker, JobID: current}
	}
	p.reserved[worker] = jobID
	p.byJob[jobID] = worker
	return nil
}

// Release frees a worker's reservation, if any
func (p *WorkerPool) Release(worker shared.UnitID) {
	jobID, ok := p.reserved[worker]
	if !ok {
		return
	}
	delete(p.reserved, worker)
	if p.byJob[jobID] == worker {
		delete(p.byJob, jobID)
	}
}

// IsReserved reports whether the worker holds a job
func (p *WorkerPool) IsReserved(worker shared.UnitID) bool {
	_, ok := p.reserved[worker]
	return ok
}

// JobOf returns the job a worker is reserved for
func (p *WorkerPool) JobOf(worker shared.UnitID) (int, bool) {
	jobID, ok := p.reserved[worker]
	return jobID, ok
}

// WorkerFor returns the worker reserved for a job
func (p *WorkerPool) WorkerFor(jobID int) (shared.UnitID, bool) {
	w, ok := p.byJob[jobID]
	return w, ok
}

// Workers returns the pool members in insertion order
func (p *WorkerPool) Workers() []shared.UnitID {
	out := make([]shared.UnitID, len(p.workers))
	copy(out, p.workers)
	return out
}

// Size returns the number of workers in the pool
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// ReservedCount returns the number of reserved workers
func (p *WorkerPool) ReservedCount() int {
	return len(p.reserved)
}
