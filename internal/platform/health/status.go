package health

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// State is the Redis-backed part of the service as seen by the checker.
type State int

const (
	StateHealthy State = iota
	StateDegraded
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// statusManager decides state transitions from successive observations.
type statusManager struct {
	mu             sync.RWMutex
	currentState   State
	lastKnownRunID string
	log            *logrus.Logger
}

func newStatusManager(initial State, runID string, log *logrus.Logger) *statusManager {
	return &statusManager{currentState: initial, lastKnownRunID: runID, log: log}
}

func (sm *statusManager) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *statusManager) RunID() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastKnownRunID
}

// Assess records one observation and reports whether caches must be rebuilt.
// A changed run_id means Redis restarted and lost its data.
func (sm *statusManager) Assess(connected bool, runID string) (needsRebuild bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	restarted := connected && sm.lastKnownRunID != "" && sm.lastKnownRunID != runID

	switch sm.currentState {
	case StateHealthy:
		if !connected {
			sm.currentState = StateDegraded
			sm.log.Warn("health: redis connection lost, state -> degraded")
		} else if restarted {
			sm.currentState = StateRebuilding
			needsRebuild = true
			sm.log.WithFields(logrus.Fields{"from": sm.lastKnownRunID, "to": runID}).Warn("health: redis restarted, state -> rebuilding")
		}
	case StateDegraded:
		if connected {
			if restarted || sm.lastKnownRunID == "" {
				sm.currentState = StateRebuilding
				needsRebuild = true
				sm.log.Warn("health: redis back with new data set, state -> rebuilding")
			} else {
				sm.currentState = StateHealthy
				sm.log.Info("health: redis connection restored, state -> healthy")
			}
		}
	case StateRebuilding:
		if !connected {
			sm.currentState = StateDegraded
			sm.log.Warn("health: redis lost during rebuild, state -> degraded")
		} else {
			// still rebuilding means the last attempt failed
			needsRebuild = true
		}
	}

	if connected {
		sm.lastKnownRunID = runID
	}
	return needsRebuild
}

// MarkRebuildComplete closes a rebuild attempt. A rebuild only counts when
// Redis did not restart again while it ran.
func (sm *statusManager) MarkRebuildComplete(success bool, runIDAfterRebuild string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.currentState != StateRebuilding {
		return
	}
	if success && sm.lastKnownRunID != runIDAfterRebuild {
		sm.log.WithFields(logrus.Fields{"from": sm.lastKnownRunID, "to": runIDAfterRebuild}).Warn("health: redis restarted during rebuild, retrying")
		sm.lastKnownRunID = runIDAfterRebuild
		return
	}
	if success {
		sm.currentState = StateHealthy
		sm.log.Info("health: cache rebuild complete, state -> healthy")
		return
	}
	sm.log.Warn("health: cache rebuild failed, will retry")
}
