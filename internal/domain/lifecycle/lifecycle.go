// Package lifecycle holds shared timeouts for component start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds graceful start/stop operations such as server
// shutdown and database pings.
const DefaultTimeout = 10 * time.Second
