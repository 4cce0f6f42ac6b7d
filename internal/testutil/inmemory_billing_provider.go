package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/remindly/remindly/internal/domain/entitlement"
	ierr "github.com/remindly/remindly/internal/errors"
)

// InMemoryBillingProvider implements entitlement.BillingProvider with
// settable state, injectable failures and call accounting, so tests can
// assert query counts and serialization.
type InMemoryBillingProvider struct {
	mu             sync.Mutex
	deviceStatus   *entitlement.SubscriptionStatus
	memberStatuses map[string]*entitlement.SubscriptionStatus
	queryErr       error

	queryDelay time.Duration

	queryCount       atomic.Int64
	clearCount       atomic.Int64
	memberQueryCount map[string]int

	inFlight      atomic.Int64
	maxConcurrent atomic.Int64
}

// NewInMemoryBillingProvider creates a provider reporting the default free,
// inactive status until SetStatus is called.
func NewInMemoryBillingProvider() *InMemoryBillingProvider {
	return &InMemoryBillingProvider{
		memberStatuses:   make(map[string]*entitlement.SubscriptionStatus),
		memberQueryCount: make(map[string]int),
	}
}

// SetStatus sets the raw status reported for the device owner.
func (p *InMemoryBillingProvider) SetStatus(status *entitlement.SubscriptionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deviceStatus = status.Clone()
}

// SetStatusFor sets the raw status reported for another user.
func (p *InMemoryBillingProvider) SetStatusFor(userID string, status *entitlement.SubscriptionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.memberStatuses[userID] = status.Clone()
}

// FailWith makes every subsequent query fail with err. Pass nil to recover.
func (p *InMemoryBillingProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queryErr = err
}

// SetQueryDelay makes queries take at least d, to widen race windows in
// concurrency tests.
func (p *InMemoryBillingProvider) SetQueryDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queryDelay = d
}

func (p *InMemoryBillingProvider) QueryStatus(ctx context.Context) (*entitlement.SubscriptionStatus, error) {
	current := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		max := p.maxConcurrent.Load()
		if current <= max || p.maxConcurrent.CompareAndSwap(max, current) {
			break
		}
	}
	p.queryCount.Add(1)

	p.mu.Lock()
	delay := p.queryDelay
	queryErr := p.queryErr
	status := p.deviceStatus
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if queryErr != nil {
		return nil, queryErr
	}
	if status == nil {
		return entitlement.DefaultStatus(), nil
	}
	return status.Clone(), nil
}

func (p *InMemoryBillingProvider) QueryStatusFor(ctx context.Context, userID string) (*entitlement.SubscriptionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.memberQueryCount[userID]++

	if p.queryErr != nil {
		return nil, p.queryErr
	}
	status, ok := p.memberStatuses[userID]
	if !ok {
		return nil, ierr.NewError("no subscription found for user").
			WithHint("User has no subscription record").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	}
	return status.Clone(), nil
}

func (p *InMemoryBillingProvider) ClearCache(ctx context.Context) error {
	p.clearCount.Add(1)
	return nil
}

// QueryCount returns how many device-level queries have been issued.
func (p *InMemoryBillingProvider) QueryCount() int {
	return int(p.queryCount.Load())
}

// MemberQueryCount returns how many times a member's status was queried.
func (p *InMemoryBillingProvider) MemberQueryCount(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memberQueryCount[userID]
}

// ClearCount returns how many times ClearCache was called.
func (p *InMemoryBillingProvider) ClearCount() int {
	return int(p.clearCount.Load())
}

// MaxConcurrentQueries returns the highest number of device-level queries
// ever observed in flight at once.
func (p *InMemoryBillingProvider) MaxConcurrentQueries() int {
	return int(p.maxConcurrent.Load())
}
