package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"travel-time-service/internal/domain"
	"travel-time-service/internal/platform/metrics"
	"travel-time-service/internal/platform/obs"
	"travel-time-service/internal/ports"

	"golang.org/x/time/rate"
)

// Provider error codes embedded in the response body. The provider signals
// some failures with HTTP 200 plus an in-body error object, so the envelope
// is inspected before the payload is parsed as a success.
const (
	transitCodeUpstreamError = 500
	transitCodeBadCoords     = -8
	transitCodeMissingParam  = -9
	transitCodeNoStopA       = 3
	transitCodeNoStopB       = 4
	transitCodeNoStopC       = 5
	transitCodeOutOfArea     = 6
	transitCodeTooClose      = -98
	transitCodeNoResult      = -99
)

// TransitClient calls the public-transit routing provider. Safe for
// concurrent use.
type TransitClient struct {
	httpClient
	apiKey  string
	baseURL string
}

func NewTransitClient(apiKey, baseURL string, pacer *rate.Limiter) (*TransitClient, error) {
	if apiKey == "" {
		return nil, errors.New("transit api key is empty")
	}
	if baseURL == "" {
		return nil, errors.New("transit base url is empty")
	}

	return &TransitClient{
		httpClient: newHTTPClient(5*time.Second, pacer, DefaultRetryConfig()),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}, nil
}

type transitErrorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type transitResponse struct {
	Error  []transitErrorEnvelope `json:"error"`
	Result *struct {
		Path []struct {
			Info struct {
				TotalTime float64 `json:"totalTime"`
			} `json:"info"`
			SubPath []struct {
				TrafficType int     `json:"trafficType"`
				Distance    float64 `json:"distance"`
			} `json:"subPath"`
		} `json:"path"`
	} `json:"result"`
}

// FindRoutes returns the provider's candidate paths for one coordinate
// pair, or the too-close variant when the points are too near for transit
// scoring. Transient failures are retried once before surfacing.
func (c *TransitClient) FindRoutes(ctx context.Context, start, end domain.Coordinates) (_ ports.TransitRoutes, err error) {
	defer obs.Time(ctx, "transit.FindRoutes")(&err)

	var out ports.TransitRoutes
	err = c.withRetry(ctx, func(ctx context.Context) error {
		var attemptErr error
		out, attemptErr = c.fetchRoutes(ctx, start, end)
		return attemptErr
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(ports.ProviderTransit, "error").Inc()
		return ports.TransitRoutes{}, err
	}

	metrics.ProviderCalls.WithLabelValues(ports.ProviderTransit, "ok").Inc()
	return out, nil
}

func (c *TransitClient) fetchRoutes(ctx context.Context, start, end domain.Coordinates) (ports.TransitRoutes, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return ports.TransitRoutes{}, fmt.Errorf("transit request: %w", err)
	}

	q := req.URL.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("SX", formatCoord(start.Lon))
	q.Set("SY", formatCoord(start.Lat))
	q.Set("EX", formatCoord(end.Lon))
	q.Set("EY", formatCoord(end.Lat))
	req.URL.RawQuery = q.Encode()

	resp, err := c.do(req, ports.ProviderTransit)
	if err != nil {
		return ports.TransitRoutes{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindTransient,
			Provider: ports.ProviderTransit,
			Message:  fmt.Sprintf("upstream status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderTransit,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var decoded transitResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderTransit,
			Message:  "decode response",
			Err:      err,
		}
	}

	if len(decoded.Error) > 0 {
		return c.translateError(decoded.Error[0])
	}

	if decoded.Result == nil || len(decoded.Result.Path) == 0 {
		// An empty success envelope is a malformed upstream result, distinct
		// from the explicit no-route codes.
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindTransient,
			Provider: ports.ProviderTransit,
			Message:  "success envelope contains no candidate paths",
		}
	}

	paths := make([]ports.TransitPath, 0, len(decoded.Result.Path))
	for _, p := range decoded.Result.Path {
		legs := make([]ports.TransitLeg, 0, len(p.SubPath))
		for _, sp := range p.SubPath {
			legs = append(legs, ports.TransitLeg{
				Type:           ports.TrafficType(sp.TrafficType),
				DistanceMeters: sp.Distance,
			})
		}
		paths = append(paths, ports.TransitPath{
			TotalTimeMinutes: p.Info.TotalTime,
			Legs:             legs,
		})
	}

	return ports.TransitRoutes{Paths: paths}, nil
}

// translateError maps the provider's opaque error codes onto the failure
// taxonomy. The too-close code is an expected outcome, not a failure.
func (c *TransitClient) translateError(e transitErrorEnvelope) (ports.TransitRoutes, error) {
	switch e.Code {
	case transitCodeTooClose:
		return ports.TransitRoutes{TooClose: true}, nil
	case transitCodeUpstreamError:
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindTransient,
			Provider: ports.ProviderTransit,
			Code:     e.Code,
			Message:  e.Message,
		}
	case transitCodeBadCoords, transitCodeMissingParam:
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindInvalidInput,
			Provider: ports.ProviderTransit,
			Code:     e.Code,
			Message:  e.Message,
		}
	case transitCodeNoStopA, transitCodeNoStopB, transitCodeNoStopC,
		transitCodeOutOfArea, transitCodeNoResult:
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindNoRoute,
			Provider: ports.ProviderTransit,
			Code:     e.Code,
			Message:  e.Message,
		}
	default:
		return ports.TransitRoutes{}, &domain.EstimateError{
			Kind:     domain.KindInternal,
			Provider: ports.ProviderTransit,
			Code:     e.Code,
			Message:  e.Message,
		}
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
