package cache

import "time"

const (
	ExpiryDefaultInMemory = 30 * time.Minute

	// ExpiryMemberStatus bounds how stale a family member's raw status may be
	// during override resolution.
	ExpiryMemberStatus = 5 * time.Minute
)
