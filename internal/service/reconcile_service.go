package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchResult reports one activity linked to one scheduled task.
type MatchResult struct {
	TaskID        primitive.ObjectID `json:"taskId"`
	TaskTitle     string             `json:"taskTitle"`
	ScheduledDate time.Time          `json:"scheduledDate"`
	ActivityID    string             `json:"activityId"`
	ActivityName  string             `json:"activityName,omitempty"`
	ActivityType  string             `json:"activityType"`
}

// --- Service Interface ---

// ReconcileService links recorded real-world activities to the scheduled
// tasks they fulfill. The caller resolves the activity window and passes it
// in; reconciliation itself performs no external I/O.
type ReconcileService interface {
	// Reconcile is an idempotent batch: already-completed tasks are excluded
	// up front, and re-running over the same window yields the same matches
	// without double-counting.
	Reconcile(ctx context.Context, planID primitive.ObjectID, window []domain.Activity) ([]MatchResult, error)
}

// --- Service Implementation ---

type reconcileService struct {
	planRepo repository.PlanRepository
	taskRepo repository.TaskRepository
}

// NewReconcileService creates a new instance of reconcileService.
func NewReconcileService(planRepo repository.PlanRepository, taskRepo repository.TaskRepository) ReconcileService {
	return &reconcileService{
		planRepo: planRepo,
		taskRepo: taskRepo,
	}
}

func (s *reconcileService) Reconcile(ctx context.Context, planID primitive.ObjectID, window []domain.Activity) ([]MatchResult, error) {
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	tasks, err := s.taskRepo.GetIncompleteByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	// Most-recent-first search; first match wins.
	activities := make([]domain.Activity, len(window))
	copy(activities, window)
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})

	matched := []MatchResult{}
	used := make(map[string]bool, len(activities))

	for i := range tasks {
		task := &tasks[i]
		if task.IsRest() {
			continue
		}

		for _, activity := range activities {
			if used[activity.ID] {
				continue
			}
			if !domain.SameCalendarDay(activity.Date, task.ScheduledDate) {
				continue
			}
			if !categoryMatches(task.Category, activity.Type) {
				continue
			}

			result, err := s.completeMatch(ctx, task, activity)
			if err != nil {
				// One corrupt row must not block the rest of the batch.
				log.Printf("WARN: failed to match activity %s to task %s: %v", activity.ID, task.ID.Hex(), err)
				break
			}
			if result != nil {
				matched = append(matched, *result)
				used[activity.ID] = true
			}
			break // first match wins, move to next task
		}
	}

	return matched, nil
}

// completeMatch marks the task complete with the activity's observed values.
// A nil result means the task completed concurrently and nothing was written.
func (s *reconcileService) completeMatch(ctx context.Context, task *domain.ScheduledTask, activity domain.Activity) (*MatchResult, error) {
	actualDuration := activity.DurationMinutes()
	actualCalories := activity.Calories

	transitioned, err := s.taskRepo.MarkComplete(ctx, task.ID, domain.TaskCompletion{
		CompletedAt:           time.Now().UTC(),
		LinkedActivityID:      activity.ID,
		ActualDurationMinutes: &actualDuration,
		ActualCalories:        &actualCalories,
	})
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, nil
	}

	if err := s.planRepo.IncrementCompleted(ctx, task.PlanID, 1); err != nil {
		log.Printf("WARN: failed to increment completed count for plan %s: %v", task.PlanID.Hex(), err)
	}

	return &MatchResult{
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		ScheduledDate: task.ScheduledDate,
		ActivityID:    activity.ID,
		ActivityName:  activity.Name,
		ActivityType:  activity.Type,
	}, nil
}

var enduranceCategories = map[string]bool{
	"endurance": true,
	"easy_run":  true,
	"long_run":  true,
	"tempo":     true,
	"interval":  true,
	"recovery":  true,
}

var strengthCategories = map[string]bool{
	"strength": true,
	"hiit":     true,
}

// categoryMatches implements the coarse compatibility table. Categories
// outside the known families match any activity on that date; odd upstream
// categorizations should still get credit.
func categoryMatches(category, activityType string) bool {
	cat := strings.ToLower(category)
	at := strings.ToLower(activityType)

	switch {
	case enduranceCategories[cat]:
		return strings.Contains(at, "running") || strings.Contains(at, "treadmill")
	case strengthCategories[cat]:
		return strings.Contains(at, "strength") || strings.Contains(at, "hiit")
	default:
		return true
	}
}
