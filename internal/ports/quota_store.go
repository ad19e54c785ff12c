package ports

import "context"

// Provider keys tracked by the quota store, one counter per upstream.
const (
	ProviderTransit = "transit"
	ProviderDriving = "driving"
)

// Port: admission control over a persisted per-day, per-provider usage tally.
// Implementations must be atomic under concurrent callers across multiple
// stateless instances sharing one database.
type QuotaStore interface {
	// Reserve admits one call for the provider's current day, or fails with
	// a quota-exceeded error once the daily limit is reached. A successful
	// return is a granted admission; the count is already incremented.
	Reserve(ctx context.Context, providerKey string) error

	// Remaining returns how many admissions are left today. Side-effect free.
	Remaining(ctx context.Context, providerKey string) (int, error)
}
