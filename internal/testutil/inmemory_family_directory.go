package testutil

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

// InMemoryFamilyDirectory implements entitlement.FamilyDirectory with
// settable household composition and injectable failures.
type InMemoryFamilyDirectory struct {
	mu        sync.Mutex
	families  map[string][]string
	lookupErr error
}

func NewInMemoryFamilyDirectory() *InMemoryFamilyDirectory {
	return &InMemoryFamilyDirectory{
		families: make(map[string][]string),
	}
}

// SetFamily registers a household; every listed member resolves to the full
// member set.
func (d *InMemoryFamilyDirectory) SetFamily(members ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, member := range members {
		d.families[member] = members
	}
}

// FailWith makes every subsequent lookup fail with err. Pass nil to recover.
func (d *InMemoryFamilyDirectory) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookupErr = err
}

func (d *InMemoryFamilyDirectory) GetFamilyMembers(ctx context.Context, userID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	members, ok := d.families[userID]
	if !ok {
		return nil, nil
	}
	return lo.Map(members, func(member string, _ int) string { return member }), nil
}
