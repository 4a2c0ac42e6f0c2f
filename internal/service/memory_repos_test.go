package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mirror the
// guarded-update semantics of the mongo implementations, including the
// isCompleted re-check on MarkComplete and ApplyAdjustment.

type memoryPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.Plan
}

func newMemoryPlanRepo() *memoryPlanRepo {
	return &memoryPlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (r *memoryPlanRepo) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.EndDate.Before(plan.StartDate) {
		return primitive.NilObjectID, errors.New("plan end date precedes start date")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	stored := *plan
	r.plans[plan.ID] = &stored
	return plan.ID, nil
}

func (r *memoryPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (r *memoryPlanRepo) List(_ context.Context, activeOnly bool) ([]domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var plans []domain.Plan
	for _, p := range r.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		plans = append(plans, *p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

func (r *memoryPlanRepo) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	plan.IsActive = active
	return nil
}

func (r *memoryPlanRepo) SetArchiveKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	plan.ArchiveKey = key
	return nil
}

func (r *memoryPlanRepo) IncrementCompleted(_ context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	plan.CompletedTasks += delta
	return nil
}

func (r *memoryPlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memoryArchive struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{stored: make(map[string][]byte)}
}

func (a *memoryArchive) StoreDocument(_ context.Context, planID string, document []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := "plans/" + planID + "/doc.json"
	a.stored[key] = document
	return key, nil
}

func (a *memoryArchive) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.stored[objectKey]; !ok {
		return "", errors.New("object not found")
	}
	return "https://archive.local/" + objectKey, nil
}

func (a *memoryArchive) DeleteDocument(_ context.Context, objectKey string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.stored, objectKey)
	a.deleted = append(a.deleted, objectKey)
	return nil
}

type memoryTaskRepo struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]*domain.ScheduledTask
	// failCreate forces CreateMany to error, for the compensating-cleanup test.
	failCreate bool
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{tasks: make(map[primitive.ObjectID]*domain.ScheduledTask)}
}

func (r *memoryTaskRepo) CreateMany(_ context.Context, tasks []domain.ScheduledTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("task insert failed")
	}
	now := time.Now().UTC()
	for i := range tasks {
		if tasks[i].ID == primitive.NilObjectID {
			tasks[i].ID = primitive.NewObjectID()
		}
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
		stored := tasks[i]
		r.tasks[tasks[i].ID] = &stored
	}
	return nil
}

func (r *memoryTaskRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memoryTaskRepo) byPlan(planID primitive.ObjectID, incompleteOnly bool) []domain.ScheduledTask {
	var tasks []domain.ScheduledTask
	for _, t := range r.tasks {
		if t.PlanID != planID {
			continue
		}
		if incompleteOnly && t.IsCompleted {
			continue
		}
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].ScheduledDate.Equal(tasks[j].ScheduledDate) {
			return tasks[i].ScheduledDate.Before(tasks[j].ScheduledDate)
		}
		return tasks[i].Slot < tasks[j].Slot
	})
	return tasks
}

func (r *memoryTaskRepo) GetByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPlan(planID, false), nil
}

func (r *memoryTaskRepo) GetIncompleteByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPlan(planID, true), nil
}

func (r *memoryTaskRepo) GetByPlanAndDateRange(_ context.Context, planID primitive.ObjectID, from, to time.Time) ([]domain.ScheduledTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []domain.ScheduledTask
	for _, t := range r.byPlan(planID, false) {
		if t.ScheduledDate.Before(from) || t.ScheduledDate.After(to) {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *memoryTaskRepo) MarkComplete(_ context.Context, id primitive.ObjectID, completion domain.TaskCompletion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.IsCompleted {
		return false, nil
	}
	task.IsCompleted = true
	completedAt := completion.CompletedAt
	task.CompletedAt = &completedAt
	if completion.LinkedActivityID != "" {
		task.LinkedActivityID = completion.LinkedActivityID
	}
	task.ActualDurationMinutes = completion.ActualDurationMinutes
	task.ActualCalories = completion.ActualCalories
	if completion.Notes != "" {
		task.Notes = completion.Notes
	}
	return true, nil
}

func (r *memoryTaskRepo) ApplyAdjustment(_ context.Context, id primitive.ObjectID, durationMinutes int, intensity domain.Intensity, adj *domain.TaskAdjustment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.IsCompleted {
		return false, nil
	}
	task.DurationMinutes = durationMinutes
	task.Intensity = intensity
	task.Adjustment = adj
	return true, nil
}

func (r *memoryTaskRepo) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		if t.PlanID == planID {
			delete(r.tasks, id)
		}
	}
	return nil
}
