package orchestrator

import (
	"sync"
	"time"
)

// registry holds every run the orchestrator has started and is the only
// place run state is mutated. Each run gets a monotonically increasing
// sequence number; commits from runs that are no longer the newest are
// dropped, which is what keeps superseded workers from clobbering the
// current run.
type registry struct {
	mu        sync.RWMutex
	runs      map[string]*Run
	latestID  string
	latestSeq uint64
}

func newRegistry() *registry {
	return &registry{runs: make(map[string]*Run)}
}

// begin registers run as the newest one, marking the previous run
// superseded when it was still in flight. It returns the sequence number
// later commits must present.
func (reg *registry) begin(run *Run) (seq uint64, superseded bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if prev, ok := reg.runs[reg.latestID]; ok && !prev.State.Terminal() {
		prev.Superseded = true
		superseded = true
	}

	reg.latestSeq++
	run.seq = reg.latestSeq
	reg.runs[run.ID] = run
	reg.latestID = run.ID
	return reg.latestSeq, superseded
}

// commit applies mutate to the newest run when seq still identifies it.
// Stale workers get false and their mutation is dropped.
func (reg *registry) commit(seq uint64, mutate func(*Run)) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if seq != reg.latestSeq {
		return false
	}
	run, ok := reg.runs[reg.latestID]
	if !ok {
		return false
	}
	mutate(run)
	return true
}

// latest returns a copy of the newest run, or nil before the first run.
func (reg *registry) latest() *Run {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	run, ok := reg.runs[reg.latestID]
	if !ok {
		return nil
	}
	return run.clone()
}

// get returns a copy of the run with the given ID.
func (reg *registry) get(id string) (*Run, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	run, ok := reg.runs[id]
	if !ok {
		return nil, false
	}
	return run.clone(), true
}

// prune drops finished and superseded runs older than maxAge. The newest
// run is kept regardless of age. Returns the number of runs removed.
func (reg *registry) prune(maxAge time.Duration) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, run := range reg.runs {
		if id == reg.latestID {
			continue
		}
		if !run.State.Terminal() && !run.Superseded {
			continue
		}
		at := run.StartedAt
		if run.FinishedAt != nil {
			at = *run.FinishedAt
		}
		if at.Before(cutoff) {
			delete(reg.runs, id)
			removed++
		}
	}
	return removed
}

// size returns the number of runs currently held.
func (reg *registry) size() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.runs)
}
