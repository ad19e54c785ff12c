package services

import (
	"context"
	"math"
	"sort"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/platform/metrics"
	"travel-time-service/internal/ports"
)

// TransitEstimator turns the transit provider's candidate paths into one
// calibrated minute figure. It consults the quota counter before any
// network call and holds no mutable state; retry lives in the client layer.
type TransitEstimator struct {
	Quota  ports.QuotaStore
	Client ports.TransitProvider
	Config ScoringConfig
}

func NewTransitEstimator(quota ports.QuotaStore, client ports.TransitProvider, cfg ScoringConfig) *TransitEstimator {
	return &TransitEstimator{Quota: quota, Client: client, Config: cfg}
}

func (e *TransitEstimator) Supports(mode domain.TransportMode) bool {
	return mode == domain.ModeTransit
}

// Estimate scores every candidate path with transfer and long-walk
// penalties, averages the lowest three adjusted times, and calibrates the
// result with a fixed buffer and safety multiplier. When the provider
// reports the points as too close for transit, a straight-line walking
// estimate is returned instead.
func (e *TransitEstimator) Estimate(ctx context.Context, q domain.TravelQuery) (int, error) {
	if err := e.Quota.Reserve(ctx, ports.ProviderTransit); err != nil {
		if domain.IsQuotaExceeded(err) {
			metrics.QuotaRejections.WithLabelValues(ports.ProviderTransit).Inc()
		}
		return 0, err
	}

	routes, err := e.Client.FindRoutes(ctx, q.Start, q.End)
	if err != nil {
		return 0, err
	}

	if routes.TooClose {
		return e.walkMinutes(domain.HaversineMeters(q.Start, q.End)), nil
	}

	return e.scorePaths(routes.Paths)
}

func (e *TransitEstimator) scorePaths(paths []ports.TransitPath) (int, error) {
	if len(paths) == 0 {
		return 0, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderTransit,
			Message:  "no candidate paths to score",
		}
	}

	adjusted := make([]float64, 0, len(paths))
	for _, p := range paths {
		adjusted = append(adjusted, e.adjustedTime(p))
	}
	sort.Float64s(adjusted)

	top := e.Config.TopPathCount
	if top <= 0 || top > len(adjusted) {
		top = len(adjusted)
	}

	sum := 0.0
	for _, t := range adjusted[:top] {
		sum += t
	}
	avg := sum / float64(top)

	return int(math.Round((avg + e.Config.BufferMinutes) * e.Config.SafetyFactor)), nil
}

// adjustedTime is the path's base time plus scoring penalties. It is used
// only for ranking and averaging, never shown to the caller directly.
func (e *TransitEstimator) adjustedTime(p ports.TransitPath) float64 {
	rides := 0
	longWalks := 0
	for _, leg := range p.Legs {
		switch {
		case leg.Type.Ride():
			rides++
		case leg.Type == ports.TrafficWalking && leg.DistanceMeters > e.Config.LongWalkThresholdMeters:
			longWalks++
		}
	}

	transfers := rides - 1
	if transfers < 0 {
		transfers = 0
	}

	return p.TotalTimeMinutes +
		float64(transfers)*e.Config.TransferPenaltyMinutes +
		float64(longWalks)*e.Config.LongWalkPenaltyMinutes
}

func (e *TransitEstimator) walkMinutes(meters float64) int {
	return int(math.Round(meters / e.Config.WalkingSpeedMPS / 60))
}
