package database

import (
	"strings"
	"sync"
)

// statusManager tracks Redis availability for the rest of the process.
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
	lastKnownRunID string
}

var globalStatus = &statusManager{}

// IsRedisHealthy reports whether Redis-backed features may be used.
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateStatus records the latest health observation. It returns true
// when the state flipped.
func UpdateStatus(isHealthy bool, newRunID string) bool {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	changed := globalStatus.isRedisHealthy != isHealthy
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy && newRunID != "" {
		globalStatus.lastKnownRunID = newRunID
	}
	return changed
}

// GetLastKnownRunID returns the run_id of the Redis server last seen healthy.
func GetLastKnownRunID() string {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.lastKnownRunID
}

// IsRetryableError reports transient SQLite lock contention.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
