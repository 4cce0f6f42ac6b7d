package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/types"
)

// EngineState is the coarse lifecycle state of the entitlement engine.
type EngineState string

const (
	EngineStateUninitialized EngineState = "uninitialized"
	EngineStateInitializing  EngineState = "initializing"
	EngineStateRefreshing    EngineState = "refreshing"
	EngineStateReady         EngineState = "ready"
)

// EntitlementService is the facade the settings and upsell surfaces talk to.
// There is exactly one instance per process; UI consumers bind to it rather
// than holding independent state.
type EntitlementService interface {
	// Initialize performs the first billing provider query. It never panics
	// past its boundary: on failure the engine is still considered
	// initialized with the fallback free status, and the error is returned
	// for observability only.
	Initialize(ctx context.Context) error

	// GetEffectivePremiumStatus returns the status actually shown to the
	// given user after family-override resolution.
	GetEffectivePremiumStatus(ctx context.Context, userID string) (*entitlement.SubscriptionStatus, error)

	// GetCurrentStatus returns the raw device-level status synchronously.
	GetCurrentStatus() *entitlement.SubscriptionStatus

	// RefreshStatus forces a provider re-query. Errors are logged, never
	// re-thrown; a failed refresh keeps the last known good status.
	RefreshStatus(ctx context.Context)

	// ForceClearStatus resets to the default free status and clears
	// provider-side credentials. Used on logout and to recover from
	// corrupted cached entitlement.
	ForceClearStatus(ctx context.Context)

	// HasFeature checks a feature flag against the current raw status.
	HasFeature(key types.FeatureKey) bool

	// HasFeatureForUser checks a feature flag against the user's effective,
	// family-resolved status.
	HasFeatureForUser(ctx context.Context, userID string, key types.FeatureKey) bool

	// AddListener registers a callback for committed status changes.
	AddListener(callback StatusListener) *Subscription

	// DebugStatus returns a snapshot of engine internals for diagnostics.
	DebugStatus() *DebugStatus

	CurrentTier() types.SubscriptionTier
	IsPremium() bool
	IsPro() bool
	IsActive() bool
}

// DebugStatus is a side-effect-free dump of the engine internals.
type DebugStatus struct {
	State         EngineState                     `json:"state"`
	CacheReady    bool                            `json:"cache_ready"`
	ListenerCount int                             `json:"listener_count"`
	RawStatus     *entitlement.SubscriptionStatus `json:"raw_status"`
	Features      types.PremiumFeatures           `json:"features"`
}

func (d *DebugStatus) String() string {
	return fmt.Sprintf("state=%s cache_ready=%t listeners=%d tier=%s active=%t",
		d.State, d.CacheReady, d.ListenerCount, d.RawStatus.Tier, d.RawStatus.IsActive)
}

type entitlementService struct {
	ServiceParams

	statusCache *StatusCache
	registry    *ListenerRegistry
	resolver    *FamilyResolver

	stateMu sync.Mutex
	state   EngineState
}

// NewEntitlementService constructs the process-wide entitlement engine.
func NewEntitlementService(params ServiceParams) EntitlementService {
	registry := NewListenerRegistry(params.Logger)
	return &entitlementService{
		ServiceParams: params,
		statusCache:   NewStatusCache(params.BillingProvider, registry, params.Logger),
		registry:      registry,
		resolver:      NewFamilyResolver(params),
		state:         EngineStateUninitialized,
	}
}

func (s *entitlementService) setState(state EngineState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *entitlementService) getState() EngineState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *entitlementService) Initialize(ctx context.Context) error {
	s.setState(EngineStateInitializing)

	err := s.statusCache.Initialize(ctx)
	if err != nil {
		// Initialization is complete regardless: the engine serves the
		// fallback free status until a refresh succeeds, rather than leaving
		// the settings surface blocked on billing.
		s.Logger.Errorw("entitlement initialization failed, serving fallback free status",
			"error", err)
	}

	s.setState(EngineStateReady)
	return err
}

func (s *entitlementService) GetCurrentStatus() *entitlement.SubscriptionStatus {
	return s.statusCache.Current()
}

func (s *entitlementService) GetEffectivePremiumStatus(ctx context.Context, userID string) (*entitlement.SubscriptionStatus, error) {
	raw := s.statusCache.Current()
	return s.resolver.EffectiveStatusFor(ctx, userID, raw), nil
}

func (s *entitlementService) RefreshStatus(ctx context.Context) {
	if s.getState() == EngineStateReady {
		s.setState(EngineStateRefreshing)
		defer s.setState(EngineStateReady)
	}

	if err := s.statusCache.Refresh(ctx); err != nil {
		// Last known good status stays in place; the next refresh retries.
		s.Logger.Errorw("status refresh failed, keeping last known status", "error", err)
	}
}

func (s *entitlementService) ForceClearStatus(ctx context.Context) {
	s.statusCache.ForceClear(ctx)
}

// HasFeature derives from the current raw status, not the per-user effective
// status. Family members needing effective checks use HasFeatureForUser.
func (s *entitlementService) HasFeature(key types.FeatureKey) bool {
	return s.statusCache.Current().Features().Has(key)
}

func (s *entitlementService) HasFeatureForUser(ctx context.Context, userID string, key types.FeatureKey) bool {
	status, _ := s.GetEffectivePremiumStatus(ctx, userID)
	return status.Features().Has(key)
}

func (s *entitlementService) AddListener(callback StatusListener) *Subscription {
	return s.registry.AddListener(callback)
}

func (s *entitlementService) DebugStatus() *DebugStatus {
	raw := s.statusCache.Current()
	debug := &DebugStatus{
		State:         s.getState(),
		CacheReady:    s.statusCache.Ready(),
		ListenerCount: s.registry.Len(),
		RawStatus:     raw,
		Features:      raw.Features(),
	}
	s.Logger.Debugw("entitlement debug status", "debug", debug.String())
	return debug
}

func (s *entitlementService) CurrentTier() types.SubscriptionTier {
	return s.statusCache.Current().Tier
}

func (s *entitlementService) IsPremium() bool {
	status := s.statusCache.Current()
	return status.IsActive && status.Tier.Compare(types.SubscriptionTierPremium) >= 0
}

func (s *entitlementService) IsPro() bool {
	status := s.statusCache.Current()
	return status.IsActive && status.Tier == types.SubscriptionTierPro
}

func (s *entitlementService) IsActive() bool {
	return s.statusCache.Current().IsActive
}
