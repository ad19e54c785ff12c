package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an estimate could not be produced.
// Callers use it to decide between "try a different transport mode"
// (no-route), "come back tomorrow" (quota) and "system is unwell".
type FailureKind int

const (
	// KindQuotaExceeded: the provider's daily admission budget is spent.
	// Permanent for the remainder of the day; no network call was made.
	KindQuotaExceeded FailureKind = iota + 1
	// KindInvalidInput: malformed or out-of-range caller input. Not retried.
	KindInvalidInput
	// KindNoRoute: a legitimate real-world outcome (no nearby stop, outside
	// service area, no result for this pair). Not retried.
	KindNoRoute
	// KindTransient: upstream 5xx, timeout or empty/malformed success
	// envelope. Retried once inside the provider client, then surfaced.
	KindTransient
	// KindInternal: anything not matching a known code or shape.
	KindInternal
)

func (k FailureKind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota exceeded"
	case KindInvalidInput:
		return "invalid input"
	case KindNoRoute:
		return "no route"
	case KindTransient:
		return "transient upstream failure"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// EstimateError is the typed failure surfaced by every layer of the
// estimation chain. Code carries the raw provider error code when one exists.
type EstimateError struct {
	Kind     FailureKind
	Provider string
	Code     int
	Message  string
	Err      error
}

func (e *EstimateError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Provider == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s provider: %s (code %d): %s", e.Provider, e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s provider: %s: %s", e.Provider, e.Kind, msg)
}

func (e *EstimateError) Unwrap() error { return e.Err }

// NewQuotaExceeded builds the quota-exhaustion failure naming the provider
// and the day whose budget is spent.
func NewQuotaExceeded(provider, day string) *EstimateError {
	return &EstimateError{
		Kind:     KindQuotaExceeded,
		Provider: provider,
		Message:  fmt.Sprintf("daily quota exhausted for %s", day),
	}
}

// KindOf extracts the failure kind from an error chain, or KindInternal
// for errors produced outside the taxonomy.
func KindOf(err error) FailureKind {
	var ee *EstimateError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindInternal
}

func IsQuotaExceeded(err error) bool { return KindOf(err) == KindQuotaExceeded }
func IsNoRoute(err error) bool       { return KindOf(err) == KindNoRoute }
func IsTransient(err error) bool {
	var ee *EstimateError
	return errors.As(err, &ee) && ee.Kind == KindTransient
}

// UnsupportedModeError reports a travel query whose transport mode has no
// registered estimator.
type UnsupportedModeError struct {
	Mode TransportMode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported transport mode %q", string(e.Mode))
}
