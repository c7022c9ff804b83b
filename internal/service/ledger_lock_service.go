package service

import (
	"bytes"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = 10 * time.Minute

	// Default for how long a mutex must be unused before cleanup
	defaultLockStaleAfter = 10 * time.Minute
)

// =============================================================================
// Types
// =============================================================================

// LedgerLocker serializes ledger writers per appointment inside this process.
//
// The database row lock taken by FindByIDForUpdate is what makes a ledger write
// atomic across processes. The in-process mutex keeps same-process writers from
// queueing on the row lock while holding pooled connections.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire appointment mutexes FIRST, in ascending id order
// 2. Then begin the DB transaction and take row locks
type LedgerLocker struct {
	log        *logrus.Logger
	staleAfter time.Duration

	// Per-appointment mutex
	appointmentMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix nano timestamp
}

// =============================================================================
// Constructor
// =============================================================================

// NewLedgerLocker creates a LedgerLocker and starts its cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewLedgerLocker(log *logrus.Logger, staleAfter time.Duration) *LedgerLocker {
	if staleAfter <= 0 {
		staleAfter = defaultLockStaleAfter
	}

	l := &LedgerLocker{
		log:        log,
		staleAfter: staleAfter,
		stopChan:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Stop shuts down the cleanup goroutine. Safe to call multiple times.
func (l *LedgerLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("LedgerLocker stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Lock acquires the mutex of every given appointment and returns the function
// that releases them. Nil and duplicate ids are skipped.
func (l *LedgerLocker) Lock(ids ...uuid.UUID) func() {
	ordered := OrderLedgerIDs(ids...)

	held := make([]*mutexWithTimestamp, 0, len(ordered))
	for _, id := range ordered {
		held = append(held, l.acquire(id))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].lastUsed.Store(time.Now().UnixNano())
				held[i].mu.Unlock()
			}
		})
	}
}

// Size returns the number of tracked appointment mutexes.
func (l *LedgerLocker) Size() int {
	n := 0
	l.appointmentMu.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// =============================================================================
// Private Helper Methods
// =============================================================================

// acquire locks the mutex for id. If cleanup removed the mutex while we were
// waiting on it, the lock is retried against the map's current entry.
func (l *LedgerLocker) acquire(id uuid.UUID) *mutexWithTimestamp {
	for {
		v, _ := l.appointmentMu.LoadOrStore(id, &mutexWithTimestamp{})
		mt := v.(*mutexWithTimestamp)
		mt.lastUsed.Store(time.Now().UnixNano())
		mt.mu.Lock()

		if current, ok := l.appointmentMu.Load(id); ok && current == v {
			return mt
		}
		mt.mu.Unlock()
	}
}

func (l *LedgerLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Ledger lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStale(time.Now())
		}
	}
}

// cleanupStale removes mutexes unused since now-staleAfter. Mutexes that are
// held are skipped via TryLock, and lastUsed is checked under the lock.
func (l *LedgerLocker) cleanupStale(now time.Time) int {
	cutoff := now.Add(-l.staleAfter).UnixNano()
	var cleaned int

	l.appointmentMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff {
				l.appointmentMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale ledger locks", cleaned)
	}
	return cleaned
}

// OrderLedgerIDs returns ids sorted ascending without nil or duplicate values.
// Every multi-appointment lock, in memory or in the database, follows this order.
func OrderLedgerIDs(ids ...uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})

	deduped := out[:0]
	for i, id := range out {
		if i > 0 && id == out[i-1] {
			continue
		}
		deduped = append(deduped, id)
	}
	return deduped
}
