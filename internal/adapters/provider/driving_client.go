package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/platform/metrics"
	"travel-time-service/internal/platform/obs"
	"travel-time-service/internal/ports"

	"golang.org/x/time/rate"
)

const predictionTimeLayout = "2006-01-02T15:04:05-0700"

// DrivingClient calls the driving-time prediction provider. Safe for
// concurrent use.
type DrivingClient struct {
	httpClient
	apiKey  string
	baseURL string

	now func() time.Time
}

func NewDrivingClient(apiKey, baseURL string, pacer *rate.Limiter) (*DrivingClient, error) {
	if apiKey == "" {
		return nil, errors.New("driving api key is empty")
	}
	if baseURL == "" {
		return nil, errors.New("driving base url is empty")
	}

	return &DrivingClient{
		httpClient: newHTTPClient(10*time.Second, pacer, DefaultRetryConfig()),
		apiKey:     apiKey,
		baseURL:    baseURL,
		now:        time.Now,
	}, nil
}

type drivingPoint struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

type drivingRequest struct {
	Departure      drivingPoint `json:"departure"`
	Destination    drivingPoint `json:"destination"`
	PredictionType string       `json:"predictionType"`
	PredictionTime string       `json:"predictionTime"`
}

type drivingResponse struct {
	Features []struct {
		Properties struct {
			TotalTime int `json:"totalTime"`
		} `json:"properties"`
	} `json:"features"`
}

// PredictDuration submits the coordinate pair with either the target
// arrival time or an immediate departure, and returns the predicted total
// seconds. Transient failures are retried once before surfacing.
func (c *DrivingClient) PredictDuration(
	ctx context.Context,
	start, end domain.Coordinates,
	arriveBy *time.Time,
) (_ ports.DrivingPrediction, err error) {
	defer obs.Time(ctx, "driving.PredictDuration")(&err)

	predictionType := "departure"
	predictionTime := c.now()
	if arriveBy != nil {
		predictionType = "arrival"
		predictionTime = *arriveBy
	}

	body := drivingRequest{
		Departure:      drivingPoint{Lon: formatCoord(start.Lon), Lat: formatCoord(start.Lat)},
		Destination:    drivingPoint{Lon: formatCoord(end.Lon), Lat: formatCoord(end.Lat)},
		PredictionType: predictionType,
		PredictionTime: predictionTime.Format(predictionTimeLayout),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.DrivingPrediction{}, fmt.Errorf("marshal driving request: %w", err)
	}

	var out ports.DrivingPrediction
	err = c.withRetry(ctx, func(ctx context.Context) error {
		var attemptErr error
		out, attemptErr = c.fetchPrediction(ctx, payload)
		return attemptErr
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(ports.ProviderDriving, "error").Inc()
		return ports.DrivingPrediction{}, err
	}

	metrics.ProviderCalls.WithLabelValues(ports.ProviderDriving, "ok").Inc()
	return out, nil
}

func (c *DrivingClient) fetchPrediction(ctx context.Context, payload []byte) (ports.DrivingPrediction, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return ports.DrivingPrediction{}, fmt.Errorf("driving request: %w", err)
	}
	req.Header.Set("appKey", c.apiKey)

	resp, err := c.do(req, ports.ProviderDriving)
	if err != nil {
		return ports.DrivingPrediction{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return ports.DrivingPrediction{}, &domain.EstimateError{
			Kind:     domain.KindTransient,
			Provider: ports.ProviderDriving,
			Message:  fmt.Sprintf("upstream status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return ports.DrivingPrediction{}, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderDriving,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var decoded drivingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DrivingPrediction{}, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderDriving,
			Message:  "decode response",
			Err:      err,
		}
	}

	if len(decoded.Features) == 0 {
		return ports.DrivingPrediction{}, &domain.EstimateError{
			Kind:     domain.KindNoRoute,
			Provider: ports.ProviderDriving,
			Message:  "no route feature in response",
		}
	}

	return ports.DrivingPrediction{
		TotalSeconds: decoded.Features[0].Properties.TotalTime,
	}, nil
}
