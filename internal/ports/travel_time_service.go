package ports

import (
	"context"

	"travel-time-service/internal/domain"
)

// Port: the boundary consumed by the API layer. Returns a calibrated
// whole-minute travel time, or one typed failure from the domain taxonomy.
type TravelTimeService interface {
	EstimateTravelTime(ctx context.Context, q domain.TravelQuery) (int, error)
}
