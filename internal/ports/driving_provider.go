package ports

import (
	"context"
	"time"

	"travel-time-service/internal/domain"
)

// Predicted door-to-door driving duration.
type DrivingPrediction struct {
	TotalSeconds int
}

// Contract for the driving-time prediction provider. When arriveBy is nil
// the prediction is made for an immediate departure.
type DrivingProvider interface {
	PredictDuration(ctx context.Context, start, end domain.Coordinates, arriveBy *time.Time) (DrivingPrediction, error)
}
