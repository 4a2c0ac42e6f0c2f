// internal/domain/readiness.go
package domain

import "time"

// HRVStatus is the categorical heart-rate-variability verdict reported by the
// biometric provider.
type HRVStatus string

const (
	HRVBalanced   HRVStatus = "balanced"
	HRVUnbalanced HRVStatus = "unbalanced"
	HRVUnknown    HRVStatus = "unknown"
)

// ReadinessDirective is the categorical outcome of a readiness evaluation.
type ReadinessDirective string

const (
	DirectiveProceed ReadinessDirective = "proceed"
	DirectiveReduce  ReadinessDirective = "reduce"
	DirectiveRest    ReadinessDirective = "rest"
)

// ReadinessInputs are the raw same-day biometric signals. Every field except
// the date is independently optional; partial telemetry is the normal case,
// and absent values are represented explicitly rather than zeroed.
type ReadinessInputs struct {
	Date        time.Time `json:"date"`
	EnergyLevel *int      `json:"energyLevel,omitempty"` // 0-100 energy reserve
	SleepScore  *int      `json:"sleepScore,omitempty"`  // 0-100
	HRVStatus   HRVStatus `json:"hrvStatus,omitempty"`
	RestingHR   *int      `json:"restingHr,omitempty"`
	StressLevel *int      `json:"stressLevel,omitempty"` // 0-100
}

// ReadinessSnapshot is the derived same-day verdict. It is a value object:
// computed on demand, never persisted by this subsystem.
type ReadinessSnapshot struct {
	Date        time.Time          `json:"date"`
	EnergyLevel *int               `json:"energyLevel,omitempty"`
	SleepScore  *int               `json:"sleepScore,omitempty"`
	HRVStatus   HRVStatus          `json:"hrvStatus"`
	RestingHR   *int               `json:"restingHr,omitempty"`
	StressLevel *int               `json:"stressLevel,omitempty"`
	Score       int                `json:"score"` // 0-100
	Directive   ReadinessDirective `json:"directive"`
	Reason      string             `json:"reason,omitempty"` // set whenever directive != proceed
}
