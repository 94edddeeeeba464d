package bluetooth

import (
	"context"
	"time"
)

// SightingHandler receives every advertisement seen by a scanner.
// Implementations must be safe to call from the scanner goroutine.
type SightingHandler interface {
	OnSighting(identifier string, rssi int, at time.Time)
}

// Scanner is a source of sightings.
type Scanner interface {
	Start(ctx context.Context, handler SightingHandler) error
	Stop()
}
