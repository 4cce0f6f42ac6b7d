package service

import (
	"github.com/remindly/remindly/internal/cache"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/logger"
)

// ServiceParams carries the shared dependencies injected into every service.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	BillingProvider entitlement.BillingProvider
	FamilyDirectory entitlement.FamilyDirectory
}
