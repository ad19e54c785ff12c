package domain

import (
	"fmt"
	"time"
)

// TransportMode selects which estimator handles a travel query.
type TransportMode string

const (
	ModeTransit TransportMode = "transit"
	ModeDriving TransportMode = "driving"
)

// TravelQuery is the parameter object for a single door-to-door estimate.
// It is ephemeral and never persisted.
type TravelQuery struct {
	Start    Coordinates
	End      Coordinates
	Mode     TransportMode
	ArriveBy *time.Time
}

// Validate checks coordinate bounds and the presence of a transport mode.
func (q TravelQuery) Validate() error {
	if !q.Start.Valid() {
		return &EstimateError{
			Kind:    KindInvalidInput,
			Message: fmt.Sprintf("start coordinates out of range: lon=%v lat=%v", q.Start.Lon, q.Start.Lat),
		}
	}
	if !q.End.Valid() {
		return &EstimateError{
			Kind:    KindInvalidInput,
			Message: fmt.Sprintf("end coordinates out of range: lon=%v lat=%v", q.End.Lon, q.End.Lat),
		}
	}
	if q.Mode == "" {
		return &EstimateError{Kind: KindInvalidInput, Message: "transport mode is required"}
	}
	return nil
}
