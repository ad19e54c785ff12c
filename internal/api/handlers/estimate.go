package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"travel-time-service/internal/api/dto"
	"travel-time-service/internal/domain"
	"travel-time-service/internal/platform/metrics"
	"travel-time-service/internal/ports"
)

type EstimateHandler struct {
	Service ports.TravelTimeService
}

// Estimate computes a door-to-door travel time for one coordinate pair and
// transport mode. The caller receives either an integer minute figure or
// one typed failure mapped onto an HTTP status.
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.EstimateRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	q := domain.TravelQuery{
		Start:    domain.Coordinates{Lon: req.StartLon, Lat: req.StartLat},
		End:      domain.Coordinates{Lon: req.EndLon, Lat: req.EndLat},
		Mode:     domain.TransportMode(req.Mode),
		ArriveBy: req.ArriveBy,
	}

	minutes, err := h.Service.EstimateTravelTime(r.Context(), q)
	if err != nil {
		h.writeEstimateError(w, r, req.Mode, err)
		return
	}

	metrics.EstimateRequests.WithLabelValues(req.Mode, "ok").Inc()
	writeJSON(w, r, http.StatusOK, dto.EstimateResponse{Mode: req.Mode, Minutes: minutes})
}

func (h *EstimateHandler) writeEstimateError(w http.ResponseWriter, r *http.Request, mode string, err error) {
	var unsupported *domain.UnsupportedModeError
	if errors.As(err, &unsupported) {
		metrics.EstimateRequests.WithLabelValues(mode, "unsupported_mode").Inc()
		writeError(w, r, http.StatusBadRequest, unsupported.Error())
		return
	}

	kind := domain.KindOf(err)
	metrics.EstimateRequests.WithLabelValues(mode, kind.String()).Inc()

	switch kind {
	case domain.KindInvalidInput:
		writeError(w, r, http.StatusBadRequest, err.Error())
	case domain.KindNoRoute:
		writeError(w, r, http.StatusNotFound, err.Error())
	case domain.KindQuotaExceeded:
		writeError(w, r, http.StatusTooManyRequests, err.Error())
	case domain.KindTransient:
		log.Printf("estimate failed upstream: mode=%s err=%v", mode, err)
		writeError(w, r, http.StatusBadGateway, "routing provider unavailable")
	default:
		log.Printf("estimate failed: mode=%s err=%v", mode, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
