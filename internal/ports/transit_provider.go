package ports

import (
	"context"

	"travel-time-service/internal/domain"
)

// TrafficType tags a leg of a candidate transit path.
type TrafficType int

const (
	TrafficSubway  TrafficType = 1
	TrafficBus     TrafficType = 2
	TrafficWalking TrafficType = 3
)

// Ride reports whether the leg is a vehicle leg (subway or bus).
func (t TrafficType) Ride() bool { return t == TrafficSubway || t == TrafficBus }

// One leg of a candidate path.
type TransitLeg struct {
	Type           TrafficType
	DistanceMeters float64
}

// One candidate path returned by the transit provider. Consumed once,
// immediately scored, then discarded.
type TransitPath struct {
	TotalTimeMinutes float64
	Legs             []TransitLeg
}

// TransitRoutes is the provider's answer for one coordinate pair.
// TooClose is an expected non-error branch: the provider refused to route
// two points that are very near each other, and the caller should fall back
// to a walking estimate. Paths is non-empty iff TooClose is false.
type TransitRoutes struct {
	TooClose bool
	Paths    []TransitPath
}

// Contract for querying the public-transit routing provider.
type TransitProvider interface {
	FindRoutes(ctx context.Context, start, end domain.Coordinates) (TransitRoutes, error)
}
