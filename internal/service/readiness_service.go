package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
)

// --- Service Interface ---

// ReadinessService turns raw same-day biometric signals into a readiness
// verdict. Evaluation is pure: it never fetches anything and never fails.
type ReadinessService interface {
	Evaluate(inputs domain.ReadinessInputs) domain.ReadinessSnapshot
}

// --- Service Implementation ---

type readinessService struct{}

// NewReadinessService creates a new instance of readinessService.
func NewReadinessService() ReadinessService {
	return &readinessService{}
}

const baselineScore = 70

// Evaluate computes the readiness score and directive from whichever signals
// are present. Absent signals contribute nothing; they never cause an error.
func (s *readinessService) Evaluate(inputs domain.ReadinessInputs) domain.ReadinessSnapshot {
	snapshot := domain.ReadinessSnapshot{
		Date:        inputs.Date,
		EnergyLevel: inputs.EnergyLevel,
		SleepScore:  inputs.SleepScore,
		HRVStatus:   inputs.HRVStatus,
		RestingHR:   inputs.RestingHR,
		StressLevel: inputs.StressLevel,
	}
	if snapshot.Date.IsZero() {
		snapshot.Date = time.Now().UTC()
	}
	if snapshot.HRVStatus == "" {
		snapshot.HRVStatus = domain.HRVUnknown
	}

	snapshot.Score = computeScore(inputs)
	snapshot.Directive, snapshot.Reason = computeDirective(inputs, snapshot.Score)
	return snapshot
}

func computeScore(in domain.ReadinessInputs) int {
	score := baselineScore

	if e := in.EnergyLevel; e != nil {
		switch {
		case *e >= 70:
			score += 15
		case *e >= 50:
			score += 5
		case *e < 30:
			score -= 20
		default: // 30-49
			score -= 10
		}
	}

	if ss := in.SleepScore; ss != nil {
		switch {
		case *ss >= 80:
			score += 10
		case *ss >= 60:
			score += 5
		case *ss < 40:
			score -= 15
		}
	}

	if st := in.StressLevel; st != nil {
		switch {
		case *st < 25:
			score += 5
		case *st > 60:
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// computeDirective applies the directive rules in strict priority order.
// Acute-fatigue signals (energy, sleep) are hard overrides that outrank the
// continuous score: a single bad night must not be averaged away.
func computeDirective(in domain.ReadinessInputs, score int) (domain.ReadinessDirective, string) {
	lowEnergy := in.EnergyLevel != nil && *in.EnergyLevel < 30
	lowSleep := in.SleepScore != nil && *in.SleepScore < 40
	if lowEnergy || lowSleep {
		var signals []string
		if lowEnergy {
			signals = append(signals, fmt.Sprintf("energy level=%d", *in.EnergyLevel))
		}
		if lowSleep {
			signals = append(signals, fmt.Sprintf("sleep score=%d", *in.SleepScore))
		}
		return domain.DirectiveRest, "rest required: " + strings.Join(signals, ", ")
	}

	if strings.Contains(strings.ToLower(string(in.HRVStatus)), "unbalanced") {
		return domain.DirectiveReduce, fmt.Sprintf("reduce intensity: HRV status is %s", in.HRVStatus)
	}

	if score < 50 {
		return domain.DirectiveReduce, fmt.Sprintf("reduce intensity: readiness score=%d", score)
	}

	return domain.DirectiveProceed, ""
}
