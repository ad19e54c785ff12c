package provider

import (
	"context"
	"time"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/ports"
)

// MockTransitProvider returns canned routes for estimator tests.
type MockTransitProvider struct {
	Routes ports.TransitRoutes
	Err    error
	Calls  int
}

func (m *MockTransitProvider) FindRoutes(ctx context.Context, start, end domain.Coordinates) (ports.TransitRoutes, error) {
	m.Calls++
	if m.Err != nil {
		return ports.TransitRoutes{}, m.Err
	}
	return m.Routes, nil
}

// MockDrivingProvider returns a canned prediction for estimator tests.
type MockDrivingProvider struct {
	Prediction ports.DrivingPrediction
	Err        error
	Calls      int

	// LastArriveBy records the arrival time the estimator passed through.
	LastArriveBy *time.Time
}

func (m *MockDrivingProvider) PredictDuration(
	ctx context.Context,
	start, end domain.Coordinates,
	arriveBy *time.Time,
) (ports.DrivingPrediction, error) {
	m.Calls++
	m.LastArriveBy = arriveBy
	if m.Err != nil {
		return ports.DrivingPrediction{}, m.Err
	}
	return m.Prediction, nil
}
