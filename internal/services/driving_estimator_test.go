package services

import (
	"context"
	"testing"
	"time"

	"travel-time-service/internal/adapters/provider"
	"travel-time-service/internal/domain"
	"travel-time-service/internal/ports"
)

func TestDrivingEstimateRoundsUpAndBuffers(t *testing.T) {
	mock := &provider.MockDrivingProvider{
		Prediction: ports.DrivingPrediction{TotalSeconds: 930},
	}

	q := &stubQuota{}
	est := NewDrivingEstimator(q, mock, DefaultScoringConfig())

	minutes, err := est.Estimate(context.Background(), domain.TravelQuery{Mode: domain.ModeDriving})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ceil(930/60) + 10 = 16 + 10 = 26
	if minutes != 26 {
		t.Fatalf("minutes = %d, want 26", minutes)
	}

	if len(q.calls) != 1 || q.calls[0] != ports.ProviderDriving {
		t.Fatalf("quota calls = %v, want one driving reservation", q.calls)
	}
}

func TestDrivingEstimateExactMinuteNotRoundedUp(t *testing.T) {
	mock := &provider.MockDrivingProvider{
		Prediction: ports.DrivingPrediction{TotalSeconds: 900},
	}

	est := NewDrivingEstimator(&stubQuota{}, mock, DefaultScoringConfig())

	minutes, err := est.Estimate(context.Background(), domain.TravelQuery{Mode: domain.ModeDriving})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 25 {
		t.Fatalf("minutes = %d, want 25", minutes)
	}
}

func TestDrivingEstimatePassesArrivalTimeThrough(t *testing.T) {
	mock := &provider.MockDrivingProvider{
		Prediction: ports.DrivingPrediction{TotalSeconds: 600},
	}

	est := NewDrivingEstimator(&stubQuota{}, mock, DefaultScoringConfig())

	arriveBy := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	_, err := est.Estimate(context.Background(), domain.TravelQuery{
		Mode:     domain.ModeDriving,
		ArriveBy: &arriveBy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.LastArriveBy == nil || !mock.LastArriveBy.Equal(arriveBy) {
		t.Fatalf("arriveBy = %v, want %v", mock.LastArriveBy, arriveBy)
	}
}

func TestDrivingEstimateQuotaExceededSkipsProvider(t *testing.T) {
	mock := &provider.MockDrivingProvider{}
	q := &stubQuota{err: domain.NewQuotaExceeded(ports.ProviderDriving, "2026-08-29")}

	est := NewDrivingEstimator(q, mock, DefaultScoringConfig())

	_, err := est.Estimate(context.Background(), domain.TravelQuery{Mode: domain.ModeDriving})
	if !domain.IsQuotaExceeded(err) {
		t.Fatalf("kind = %v, want quota exceeded", domain.KindOf(err))
	}
	if mock.Calls != 0 {
		t.Fatalf("provider calls = %d, want 0", mock.Calls)
	}
}
