package services

import (
	"context"

	"travel-time-service/internal/domain"
)

// TravelEstimator is one registered per-mode calculator.
type TravelEstimator interface {
	Supports(mode domain.TransportMode) bool
	Estimate(ctx context.Context, q domain.TravelQuery) (int, error)
}

// RouteService dispatches a travel query to the first estimator supporting
// its transport mode. Stateless; no caching across calls.
type RouteService struct {
	estimators []TravelEstimator
}

func NewRouteService(estimators ...TravelEstimator) *RouteService {
	return &RouteService{estimators: estimators}
}

// EstimateTravelTime selects the estimator for the query's transport mode
// and delegates. No quota or network calls happen for unsupported modes.
func (s *RouteService) EstimateTravelTime(ctx context.Context, q domain.TravelQuery) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}

	for _, e := range s.estimators {
		if e.Supports(q.Mode) {
			return e.Estimate(ctx, q)
		}
	}

	return 0, &domain.UnsupportedModeError{Mode: q.Mode}
}
