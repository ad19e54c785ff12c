package services

import (
	"context"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/platform/metrics"
	"travel-time-service/internal/ports"
)

// DrivingEstimator converts the driving provider's predicted seconds into
// minutes, rounding up and appending a fixed buffer. The quota counter is
// consulted before any network call.
type DrivingEstimator struct {
	Quota  ports.QuotaStore
	Client ports.DrivingProvider
	Config ScoringConfig
}

func NewDrivingEstimator(quota ports.QuotaStore, client ports.DrivingProvider, cfg ScoringConfig) *DrivingEstimator {
	return &DrivingEstimator{Quota: quota, Client: client, Config: cfg}
}

func (e *DrivingEstimator) Supports(mode domain.TransportMode) bool {
	return mode == domain.ModeDriving
}

func (e *DrivingEstimator) Estimate(ctx context.Context, q domain.TravelQuery) (int, error) {
	if err := e.Quota.Reserve(ctx, ports.ProviderDriving); err != nil {
		if domain.IsQuotaExceeded(err) {
			metrics.QuotaRejections.WithLabelValues(ports.ProviderDriving).Inc()
		}
		return 0, err
	}

	pred, err := e.Client.PredictDuration(ctx, q.Start, q.End, q.ArriveBy)
	if err != nil {
		return 0, err
	}

	// Round up to the next whole minute before adding the buffer.
	minutes := (pred.TotalSeconds + 59) / 60

	return minutes + e.Config.DrivingBufferMinutes, nil
}
