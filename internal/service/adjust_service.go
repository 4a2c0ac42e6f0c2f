package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnknownAdjustmentMode = errors.New("unknown adjustment mode")

// AdjustmentMode selects how the load factor is derived.
type AdjustmentMode string

const (
	ModeAuto           AdjustmentMode = "auto"
	ModeManualIncrease AdjustmentMode = "manual-increase"
	ModeManualDecrease AdjustmentMode = "manual-decrease"
	ModeAddRecovery    AdjustmentMode = "add-recovery"
)

// AdjustmentResult summarizes one adjustment run over a plan.
type AdjustmentResult struct {
	PlanID        primitive.ObjectID       `json:"planId"`
	Factor        float64                  `json:"factor"`
	AdjustedTasks int                      `json:"adjustedTasks"`
	NeedsRecovery bool                     `json:"needsRecovery"`
	Rationale     []string                 `json:"rationale"`
	Readiness     domain.ReadinessSnapshot `json:"readiness"`
}

// --- Service Interface ---

// AdjustService rewrites a plan's remaining incomplete tasks based on the
// current readiness snapshot. Completed tasks are never touched.
type AdjustService interface {
	Adjust(ctx context.Context, planID primitive.ObjectID, snapshot domain.ReadinessSnapshot, mode AdjustmentMode) (*AdjustmentResult, error)
}

// --- Service Implementation ---

type adjustService struct {
	planRepo repository.PlanRepository
	taskRepo repository.TaskRepository
}

// NewAdjustService creates a new instance of adjustService.
func NewAdjustService(planRepo repository.PlanRepository, taskRepo repository.TaskRepository) AdjustService {
	return &adjustService{
		planRepo: planRepo,
		taskRepo: taskRepo,
	}
}

func (s *adjustService) Adjust(ctx context.Context, planID primitive.ObjectID, snapshot domain.ReadinessSnapshot, mode AdjustmentMode) (*AdjustmentResult, error) {
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	factor, needsRecovery, rationale, err := deriveFactor(snapshot, mode)
	if err != nil {
		return nil, err
	}

	result := &AdjustmentResult{
		PlanID:        planID,
		Factor:        factor,
		NeedsRecovery: needsRecovery,
		Rationale:     rationale,
		Readiness:     snapshot,
	}

	tasks, err := s.taskRepo.GetIncompleteByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		// Nothing left to adjust; a no-op, not an error.
		return result, nil
	}

	reason := strings.Join(rationale, "; ")
	now := time.Now().UTC()

	for i := range tasks {
		task := &tasks[i]

		newIntensity := task.Intensity
		if needsRecovery && task.Intensity == domain.IntensityHigh {
			newIntensity = domain.IntensityModerate
		}

		newDuration := task.DurationMinutes
		if task.DurationMinutes > 0 {
			newDuration = scaleDuration(task.DurationMinutes, factor)
		}

		if newDuration == task.DurationMinutes && newIntensity == task.Intensity {
			continue
		}

		adj := &domain.TaskAdjustment{
			Factor:     factor,
			Reason:     reason,
			AdjustedAt: now,
		}
		if newDuration != task.DurationMinutes {
			adj.OriginalDurationMinutes = task.DurationMinutes
		}
		if newIntensity != task.Intensity {
			adj.OriginalIntensity = task.Intensity
		}

		applied, err := s.taskRepo.ApplyAdjustment(ctx, task.ID, newDuration, newIntensity, adj)
		if err != nil {
			// A malformed row must not abort the whole batch.
			log.Printf("WARN: failed to adjust task %s: %v", task.ID.Hex(), err)
			continue
		}
		if !applied {
			// The task completed mid-run; skip it.
			continue
		}
		result.AdjustedTasks++
	}

	return result, nil
}

// scaleDuration rounds half-up in decimal terms. Composed factors are not
// exactly representable in binary (45*0.7 evaluates to 31.4999...), so the
// product is snapped to six decimals before rounding.
func scaleDuration(minutes int, factor float64) int {
	product := math.Round(float64(minutes)*factor*1e6) / 1e6
	return int(math.Round(product))
}

// deriveFactor composes the load factor. In auto mode every applicable rule
// contributes multiplicatively, unlike the readiness directive where the
// first matching rule wins.
func deriveFactor(snapshot domain.ReadinessSnapshot, mode AdjustmentMode) (float64, bool, []string, error) {
	factor := 1.0
	needsRecovery := false
	var rationale []string

	switch mode {
	case ModeAuto:
		switch {
		case snapshot.Score < 50:
			factor = 0.7
			rationale = append(rationale, fmt.Sprintf("reduced load: readiness score %d", snapshot.Score))
		case snapshot.Score < 70:
			factor = 0.85
			rationale = append(rationale, fmt.Sprintf("slightly reduced load: readiness score %d", snapshot.Score))
		case snapshot.Score > 85:
			factor = 1.1
			rationale = append(rationale, fmt.Sprintf("increased load: readiness score %d", snapshot.Score))
		}

		if ss := snapshot.SleepScore; ss != nil && *ss < 50 {
			factor *= 0.9
			needsRecovery = true
			rationale = append(rationale, fmt.Sprintf("sleep score %d low, prioritizing recovery", *ss))
		}

		if st := snapshot.StressLevel; st != nil && *st > 60 {
			factor *= 0.85
			rationale = append(rationale, fmt.Sprintf("stress level %d high, favoring easier sessions", *st))
		}

	case ModeManualIncrease:
		factor = 1.15
		rationale = append(rationale, "manual increase in intensity")

	case ModeManualDecrease:
		factor = 0.8
		rationale = append(rationale, "manual decrease in intensity")

	case ModeAddRecovery:
		needsRecovery = true
		rationale = append(rationale, "added recovery emphasis")

	default:
		return 0, false, nil, ErrUnknownAdjustmentMode
	}

	return factor, needsRecovery, rationale, nil
}
