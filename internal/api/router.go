package api

import (
	"net/http"

	"travel-time-service/internal/api/handlers"
	"travel-time-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(service ports.TravelTimeService) http.Handler {
	mux := http.NewServeMux()

	estimateHandler := &handlers.EstimateHandler{Service: service}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/travel-time", estimateHandler.Estimate)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(requestIDMiddleware(mux))
}
