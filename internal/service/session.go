package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// SessionManager tracks which users currently have an active session and
// drives the lifecycle hooks: session start warms the caches and requests an
// initial refresh, session end purges every per-user table and any pending
// queue jobs. It also runs the periodic refresh ticker for active sessions.
type SessionManager struct {
	owned    *OwnedService
	totals   *TotalsService
	queue    *RefreshQueue
	interval time.Duration
	logger   *slog.Logger

	mu     sync.RWMutex
	active map[int64]struct{}
}

// NewSessionManager creates the session manager. Attach the refresh queue
// with AttachQueue before starting sessions.
func NewSessionManager(owned *OwnedService, totals *TotalsService, interval time.Duration, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		owned:    owned,
		totals:   totals,
		interval: interval,
		logger:   logger,
		active:   make(map[int64]struct{}),
	}
}

// AttachQueue wires the refresh queue. Separate from the constructor because
// the queue's session-liveness probe points back at this manager.
func (m *SessionManager) AttachQueue(queue *RefreshQueue) {
	m.queue = queue
}

// Active reports whether the user has a live session.
func (m *SessionManager) Active(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[userID]
	return ok
}

// ActiveUsers returns a snapshot of all live session user IDs.
func (m *SessionManager) ActiveUsers() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]int64, 0, len(m.active))
	for userID := range m.active {
		users = append(users, userID)
	}
	return users
}

// Start begins a session: mark the user active, warm the basic-info cache,
// and request a notifying refresh.
func (m *SessionManager) Start(ctx context.Context, userID int64) domain.UserInfo {
	m.mu.Lock()
	m.active[userID] = struct{}{}
	m.mu.Unlock()

	info := m.owned.BasicInfo(ctx, userID)
	m.logger.Info("session started", "userId", userID, "username", info.Username)

	if m.queue != nil {
		m.queue.Enqueue(userID, true)
	}
	return info
}

// End tears a session down: pending refresh jobs are dropped first so the
// worker cannot observe the user between purge and deactivation, then every
// per-user cache entry is removed. Purging is explicit — nothing expires on
// its own when a user disconnects.
func (m *SessionManager) End(userID int64) {
	m.mu.Lock()
	delete(m.active, userID)
	m.mu.Unlock()

	if m.queue != nil {
		m.queue.RemoveUser(userID)
	}
	m.owned.Forget(userID)
	m.totals.Forget(userID)
	m.logger.Info("session ended", "userId", userID)
}

// Run enqueues a non-notifying refresh for every active session on the
// configured interval, until ctx is cancelled. A non-positive interval
// disables the ticker.
func (m *SessionManager) Run(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, userID := range m.ActiveUsers() {
				if m.queue != nil {
					m.queue.Enqueue(userID, false)
				}
			}
		}
	}
}
