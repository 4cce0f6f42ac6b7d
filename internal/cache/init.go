package cache

import (
	"github.com/remindly/remindly/internal/logger"
)

// Initialize initializes the cache system. The engine only carries the
// in-memory flavor; member-status memoization does not need to survive the
// process.
func Initialize(log *logger.Logger) Cache {
	log.Infow("Initializing cache system", "type", "inmemory")

	InitializeInMemoryCache()
	return GetInMemoryCache()
}
