package services

// ScoringConfig carries the calibration constants applied on top of raw
// provider output. Their exact tuning is a product decision; they are
// configuration, not derived values.
type ScoringConfig struct {
	// Minutes added per transfer between vehicle legs.
	TransferPenaltyMinutes float64
	// Minutes added per walking leg longer than LongWalkThresholdMeters.
	LongWalkPenaltyMinutes  float64
	LongWalkThresholdMeters float64
	// Number of lowest adjusted times averaged into the estimate.
	TopPathCount int
	// Fixed buffer and safety multiplier applied to the averaged time.
	BufferMinutes float64
	SafetyFactor  float64
	// Walking speed used by the too-close fallback.
	WalkingSpeedMPS float64
	// Minutes appended to the driving prediction after rounding up.
	DrivingBufferMinutes int
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TransferPenaltyMinutes:  6.5,
		LongWalkPenaltyMinutes:  4.0,
		LongWalkThresholdMeters: 800,
		TopPathCount:            3,
		BufferMinutes:           5,
		SafetyFactor:            1.07,
		WalkingSpeedMPS:         1.25,
		DrivingBufferMinutes:    10,
	}
}
