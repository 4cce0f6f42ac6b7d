package testutil

import (
	"context"

	"github.com/remindly/remindly/internal/cache"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/types"
	"github.com/stretchr/testify/suite"
)

// BaseServiceTestSuite provides fresh collaborator fakes, config and logger
// for every test, so no process-wide state leaks between tests.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	logger    *logger.Logger
	config    *config.Configuration
	cache     cache.Cache
	provider  *InMemoryBillingProvider
	directory *InMemoryFamilyDirectory
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetRequestID(context.Background(), types.GenerateRequestID())
	s.config = config.GetDefaultConfig()
	s.logger = logger.GetLogger()
	s.cache = cache.NewInMemoryCache()
	s.provider = NewInMemoryBillingProvider()
	s.directory = NewInMemoryFamilyDirectory()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetProvider() *InMemoryBillingProvider {
	return s.provider
}

func (s *BaseServiceTestSuite) GetDirectory() *InMemoryFamilyDirectory {
	return s.directory
}
