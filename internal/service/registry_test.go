package service

import (
	"testing"
	"time"

	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/types"
	"github.com/stretchr/testify/suite"
)

type ListenerRegistrySuite struct {
	suite.Suite
	registry *ListenerRegistry
}

func TestListenerRegistry(t *testing.T) {
	suite.Run(t, new(ListenerRegistrySuite))
}

func (s *ListenerRegistrySuite) SetupTest() {
	s.registry = NewListenerRegistry(logger.GetLogger())
}

func (s *ListenerRegistrySuite) notifyPremium() {
	renewal := time.Now().UTC().Add(24 * time.Hour)
	s.registry.Notify(entitlement.StatusForTier(types.SubscriptionTierPremium, &renewal))
}

func (s *ListenerRegistrySuite) TestNotifyInRegistrationOrder() {
	var order []string
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "first") })
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "second") })
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "third") })

	s.notifyPremium()
	s.Equal([]string{"first", "second", "third"}, order)
}

func (s *ListenerRegistrySuite) TestUnsubscribedListenerNotInvoked() {
	var order []string
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "first") })
	second := s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "second") })
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "third") })

	second.Unsubscribe()
	s.Equal(2, s.registry.Len())

	s.notifyPremium()
	s.Equal([]string{"first", "third"}, order)

	// Unsubscribe is idempotent.
	second.Unsubscribe()
	s.Equal(2, s.registry.Len())
}

func (s *ListenerRegistrySuite) TestUnsubscribeDuringNotify() {
	var order []string
	var third *Subscription

	s.registry.AddListener(func(*entitlement.SubscriptionStatus) {
		order = append(order, "first")
		// Removing a later listener mid-fanout must suppress its callback in
		// this same notification.
		third.Unsubscribe()
	})
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "second") })
	third = s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "third") })

	s.notifyPremium()
	s.Equal([]string{"first", "second"}, order)
	s.Equal(2, s.registry.Len())
}

func (s *ListenerRegistrySuite) TestSelfUnsubscribeDuringNotify() {
	var calls int
	var sub *Subscription
	sub = s.registry.AddListener(func(*entitlement.SubscriptionStatus) {
		calls++
		sub.Unsubscribe()
	})

	s.notifyPremium()
	s.notifyPremium()

	s.Equal(1, calls)
	s.Equal(0, s.registry.Len())
}

func (s *ListenerRegistrySuite) TestPanicDoesNotStopFanout() {
	var order []string
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) {
		order = append(order, "first")
		panic("listener blew up")
	})
	s.registry.AddListener(func(*entitlement.SubscriptionStatus) { order = append(order, "second") })

	s.NotPanics(func() { s.notifyPremium() })
	s.Equal([]string{"first", "second"}, order)

	// A panicking listener stays registered and keeps receiving.
	s.NotPanics(func() { s.notifyPremium() })
	s.Equal([]string{"first", "second", "first", "second"}, order)
}

func (s *ListenerRegistrySuite) TestListenersReceiveIndependentCopies() {
	var seen []*entitlement.SubscriptionStatus
	s.registry.AddListener(func(status *entitlement.SubscriptionStatus) {
		status.Tier = types.SubscriptionTierFree // mutation must not leak
		seen = append(seen, status)
	})
	s.registry.AddListener(func(status *entitlement.SubscriptionStatus) {
		seen = append(seen, status)
	})

	s.notifyPremium()

	s.Len(seen, 2)
	s.NotSame(seen[0], seen[1])
	s.Equal(types.SubscriptionTierPremium, seen[1].Tier)
}

func (s *ListenerRegistrySuite) TestNotifyWithNoListeners() {
	s.NotPanics(func() { s.notifyPremium() })
	s.Equal(0, s.registry.Len())
}
