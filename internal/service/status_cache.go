package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/remindly/remindly/internal/domain/entitlement"
	ierr "github.com/remindly/remindly/internal/errors"
	"github.com/remindly/remindly/internal/logger"
	"golang.org/x/sync/singleflight"
)

// queryKey is the single-flight key shared by Initialize and Refresh so that
// at most one billing provider query is ever outstanding.
const queryKey = "billing_status"

type queryResult struct {
	seq    uint64
	status *entitlement.SubscriptionStatus
}

// StatusCache is the process-wide holder of the last known raw subscription
// status. It serializes provider queries behind a single-flight guard and
// commits results by sequence number so an overlapping query that completes
// out of order cannot clobber a newer status.
type StatusCache struct {
	mu         sync.RWMutex
	current    *entitlement.SubscriptionStatus
	ready      bool
	appliedSeq uint64

	seq      atomic.Uint64
	group    singleflight.Group
	provider entitlement.BillingProvider
	registry *ListenerRegistry
	logger   *logger.Logger
}

func NewStatusCache(
	provider entitlement.BillingProvider,
	registry *ListenerRegistry,
	log *logger.Logger,
) *StatusCache {
	return &StatusCache{
		provider: provider,
		registry: registry,
		logger:   log,
	}
}

// Current returns the last stored raw status without blocking. Before the
// first successful query it returns the default free, inactive status.
func (c *StatusCache) Current() *entitlement.SubscriptionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready || c.current == nil {
		return entitlement.DefaultStatus()
	}
	return c.current.Clone()
}

// Ready reports whether a provider result has been stored.
func (c *StatusCache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Initialize queries the billing provider once and stores the result.
// Idempotent: once ready it is a no-op, and concurrent callers share a single
// in-flight query. A provider failure leaves the cache unready and the stored
// default untouched.
func (c *StatusCache) Initialize(ctx context.Context) error {
	if c.Ready() {
		return nil
	}
	return c.runQuery(ctx, false)
}

// Refresh forces a new provider query. A refresh issued while another query
// (initialize or refresh) is still outstanding joins that flight instead of
// issuing a duplicate provider call. Listeners are notified only when the
// committed result differs from the previous status by tier or active flag.
func (c *StatusCache) Refresh(ctx context.Context) error {
	return c.runQuery(ctx, true)
}

func (c *StatusCache) runQuery(ctx context.Context, forced bool) error {
	v, err, _ := c.group.Do(queryKey, func() (interface{}, error) {
		if !forced && c.Ready() {
			return nil, nil
		}

		seq := c.seq.Add(1)
		status, qerr := c.provider.QueryStatus(ctx)
		if qerr != nil {
			return nil, ierr.WithError(qerr).
				WithHint("Unable to reach the billing provider").
				Mark(ierr.ErrProviderUnavailable)
		}
		return &queryResult{seq: seq, status: status}, nil
	})
	if err != nil {
		c.logger.Errorw("billing provider query failed",
			"forced", forced,
			"error", err)
		return err
	}

	// Commit and notify happen here, after the flight has completed, so a
	// listener may synchronously re-enter Refresh without deadlocking the
	// guard. Coalesced callers all attempt the commit; the sequence check
	// makes it apply exactly once.
	if result, ok := v.(*queryResult); ok && result != nil {
		c.commit(result.seq, result.status)
	}
	return nil
}

// ForceClear resets the stored status to the default free, inactive value and
// drops provider-side cached credentials, without querying the provider.
func (c *StatusCache) ForceClear(ctx context.Context) {
	if err := c.provider.ClearCache(ctx); err != nil {
		// The reset must proceed regardless; a stale provider cache will be
		// replaced on the next refresh.
		c.logger.Warnw("failed to clear billing provider cache", "error", err)
	}

	c.commit(c.seq.Add(1), entitlement.DefaultStatus())
}

// commit stores the status if seq is newer than the last applied sequence
// (last-write-wins) and notifies the registry when the entitlement changed.
// Notification runs after the lock is released.
func (c *StatusCache) commit(seq uint64, status *entitlement.SubscriptionStatus) {
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.appliedSeq = seq

	prev := c.current
	if prev == nil {
		prev = entitlement.DefaultStatus()
	}
	c.current = status.Clone()
	c.ready = true
	changed := !status.SameEntitlement(prev)
	c.mu.Unlock()

	if changed {
		c.logger.Infow("subscription status changed",
			"previous_tier", prev.Tier,
			"previous_active", prev.IsActive,
			"tier", status.Tier,
			"active", status.IsActive)
		c.registry.Notify(status)
	}
}
