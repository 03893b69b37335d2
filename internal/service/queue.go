package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/creatorstats/internal/domain"
	"github.com/mmcdole/creatorstats/internal/metrics"
)

const defaultJobTimeout = 30 * time.Second

// DefaultMilestones are the cumulative-visit thresholds that trigger a
// one-time reward. Issuing an already-held reward is the issuer's no-op.
var DefaultMilestones = []domain.Milestone{
	{Visits: 1_000, Badge: "visits-1k"},
	{Visits: 10_000, Badge: "visits-10k"},
	{Visits: 100_000, Badge: "visits-100k"},
	{Visits: 1_000_000, Badge: "visits-1m"},
}

// refreshJob is one pending per-user refresh request.
type refreshJob struct {
	UserID int64
	Notify bool
}

// RefreshQueue serializes background refreshes: a FIFO queue drained by at
// most one worker goroutine across the whole queue, so a burst of refresh
// requests never turns into a burst of upstream calls. The worker exits when
// the queue empties and is respawned by the next Enqueue; the idle→draining
// transition happens under the queue mutex so two near-simultaneous enqueues
// cannot spawn two workers.
type RefreshQueue struct {
	totals     *TotalsService
	rewards    domain.RewardIssuer
	profile    domain.ProfileStore
	notifier   domain.StatsNotifier
	active     func(userID int64) bool
	milestones []domain.Milestone
	jobTimeout time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	cond     *sync.Cond
	jobs     []refreshJob
	draining bool
}

// QueueOptions carries the optional collaborators and tunables.
type QueueOptions struct {
	Notifier   domain.StatsNotifier
	Milestones []domain.Milestone
	JobTimeout time.Duration
	Metrics    *metrics.Metrics
}

// NewRefreshQueue creates the queue. active reports whether a user's session
// is still live; jobs for ended sessions are dropped silently.
func NewRefreshQueue(
	totals *TotalsService,
	rewards domain.RewardIssuer,
	profile domain.ProfileStore,
	active func(userID int64) bool,
	opts QueueOptions,
	logger *slog.Logger,
) *RefreshQueue {
	if logger == nil {
		logger = slog.Default()
	}
	milestones := opts.Milestones
	if len(milestones) == 0 {
		milestones = DefaultMilestones
	}
	timeout := opts.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	q := &RefreshQueue{
		totals:     totals,
		rewards:    rewards,
		profile:    profile,
		notifier:   opts.Notifier,
		active:     active,
		milestones: milestones,
		jobTimeout: timeout,
		logger:     logger,
		metrics:    opts.Metrics,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a refresh job for the user and starts the worker if idle.
// Duplicate enqueues are not coalesced; the second run is typically a fast
// cache hit.
func (q *RefreshQueue) Enqueue(userID int64, notify bool) {
	q.mu.Lock()
	q.jobs = append(q.jobs, refreshJob{UserID: userID, Notify: notify})
	depth := len(q.jobs)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.QueueDepth.Set(float64(depth))
	}
	q.logger.Debug("refresh enqueued", "userId", userID, "notify", notify, "depth", depth)
	if start {
		go q.drain()
	}
}

// RemoveUser drops any not-yet-processed jobs for the user. Called on
// session teardown; an in-flight job is not interrupted.
func (q *RefreshQueue) RemoveUser(userID int64) {
	q.mu.Lock()
	kept := q.jobs[:0]
	for _, job := range q.jobs {
		if job.UserID != userID {
			kept = append(kept, job)
		}
	}
	q.jobs = kept
	depth := len(q.jobs)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.QueueDepth.Set(float64(depth))
	}
}

// Wait blocks until the queue is empty and the worker has exited. Used by
// tests and graceful shutdown.
func (q *RefreshQueue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.draining || len(q.jobs) > 0 {
		q.cond.Wait()
	}
}

// drain pops and processes jobs in FIFO order until the queue empties, then
// clears the draining flag and exits.
func (q *RefreshQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.draining = false
			q.cond.Broadcast()
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		depth := len(q.jobs)
		q.mu.Unlock()

		if q.metrics != nil {
			q.metrics.QueueDepth.Set(float64(depth))
		}
		q.process(job)
	}
}

// process runs a single job. Failures are caught and logged; they never
// abort the worker or drop subsequent jobs.
func (q *RefreshQueue) process(job refreshJob) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("refresh job panicked", "userId", job.UserID, "panic", r)
			if q.metrics != nil {
				q.metrics.JobsFailed.Inc()
			}
		}
	}()

	if q.active != nil && !q.active(job.UserID) {
		q.logger.Debug("skipping refresh for ended session", "userId", job.UserID)
		if q.metrics != nil {
			q.metrics.JobsSkipped.Inc()
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
	defer cancel()

	totals := q.totals.Totals(ctx, job.UserID)

	for _, milestone := range q.milestones {
		if totals.Visits < milestone.Visits {
			continue
		}
		if err := q.rewards.Award(ctx, job.UserID, milestone.Badge); err != nil {
			q.logger.Warn("reward issuance failed", "userId", job.UserID, "badge", milestone.Badge, "error", err)
		}
	}

	if err := q.profile.SetTotals(job.UserID, totals); err != nil {
		q.logger.Warn("totals mirror update failed", "userId", job.UserID, "error", err)
	}

	if job.Notify && q.notifier != nil {
		q.notifier.Notify(ctx, job.UserID, totals)
	}

	if q.metrics != nil {
		q.metrics.JobsProcessed.Inc()
	}
}
