// Package quota implements the persisted daily admission counters that
// protect the upstream routing providers. One row exists per
// (provider_key, usage_date); all mutation goes through the conditional
// increment-or-insert protocol in admit, which is safe under arbitrary
// concurrency without locks.
package quota

import (
	"context"

	"travel-time-service/internal/domain"
)

// DefaultDailyLimit is the per-provider admission ceiling. The figure is a
// product decision tied to the paid upstream plan; it is configurable, not
// derived.
const DefaultDailyLimit = 1000

// Calendar-day key format, rendered in the provider's local zone.
const dayLayout = "2006-01-02"

// admit runs the race-safe admission protocol shared by every dialect:
//
//  1. Conditionally increment today's row where count < limit.
//  2. On zero rows affected, insert the day's first row with count = 1.
//  3. If a concurrent caller inserted first, retry the increment once.
//  4. If the retried increment also affects zero rows, the day is exhausted.
//
// tryIncrement and insertFirst report whether they changed a row; any
// persistence failure propagates unchanged.
func admit(
	ctx context.Context,
	providerKey, usageDate string,
	tryIncrement func(ctx context.Context, providerKey, usageDate string) (bool, error),
	insertFirst func(ctx context.Context, providerKey, usageDate string) (bool, error),
) error {
	ok, err := tryIncrement(ctx, providerKey, usageDate)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// Zero rows: either no row exists yet for today, or the limit is hit.
	// The insert disambiguates the two without an extra read.
	inserted, err := insertFirst(ctx, providerKey, usageDate)
	if err != nil {
		return err
	}
	if inserted {
		return nil
	}

	// A concurrent caller created the row between the two statements.
	ok, err = tryIncrement(ctx, providerKey, usageDate)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	return domain.NewQuotaExceeded(providerKey, usageDate)
}

func remaining(limit, count int) int {
	if r := limit - count; r > 0 {
		return r
	}
	return 0
}
