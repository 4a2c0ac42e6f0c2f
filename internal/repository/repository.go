package repository

import (
	"context"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// List returns plans newest-first; activeOnly restricts to active plans.
	List(ctx context.Context, activeOnly bool) ([]domain.Plan, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error
	// IncrementCompleted atomically adjusts the completed-task counter.
	IncrementCompleted(ctx context.Context, id primitive.ObjectID, delta int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TaskRepository defines the interface for interacting with scheduled task data.
type TaskRepository interface {
	CreateMany(ctx context.Context, tasks []domain.ScheduledTask) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledTask, error)
	// GetByPlanID returns all tasks of a plan ordered by date then slot.
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error)
	GetIncompleteByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error)
	// GetByPlanAndDateRange returns a plan's tasks scheduled in [from, to].
	GetByPlanAndDateRange(ctx context.Context, planID primitive.ObjectID, from, to time.Time) ([]domain.ScheduledTask, error)
	// MarkComplete transitions an incomplete task to complete. It returns
	// false without error when the task was already complete, so callers can
	// keep the parent plan's counter exact under concurrent runs.
	MarkComplete(ctx context.Context, id primitive.ObjectID, completion domain.TaskCompletion) (bool, error)
	// ApplyAdjustment rewrites duration/intensity of an incomplete task. It
	// returns false without error when the task completed in the meantime.
	ApplyAdjustment(ctx context.Context, id primitive.ObjectID, durationMinutes int, intensity domain.Intensity, adj *domain.TaskAdjustment) (bool, error)
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}
