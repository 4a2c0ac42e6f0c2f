package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/repository"
	"github.com/orkunisitmak/orktrack/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrTaskNotFound        = errors.New("scheduled task not found")
	ErrEmptyPlanDocument   = errors.New("plan document contains no day entries")
	ErrUnknownPlanShape    = errors.New("unknown plan shape")
	ErrDocumentNotArchived = errors.New("plan document not archived")
)

// ActualValues carries optional observed values for a manual completion.
type ActualValues struct {
	DurationMinutes *int
	Calories        *int
	Notes           string
}

// --- Service Interface ---

type PlanService interface {
	// Materialize converts a day-labeled plan document into a persisted Plan
	// with absolute-dated tasks. rawDoc is the original blob retained on the
	// plan; pass nil to have it re-marshaled from doc.
	Materialize(ctx context.Context, doc domain.PlanDocument, rawDoc []byte, anchor time.Time, shape domain.PlanShape) (*domain.Plan, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, []domain.ScheduledTask, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]domain.Plan, error)
	GetTasksInRange(ctx context.Context, planID primitive.ObjectID, from, to time.Time) ([]domain.ScheduledTask, error)
	DeactivatePlan(ctx context.Context, planID primitive.ObjectID) error
	// DeletePlan removes the plan, its tasks, and its archived document blob.
	DeletePlan(ctx context.Context, planID primitive.ObjectID) error
	// DocumentDownloadURL returns a temporary link to the archived raw
	// document blob.
	DocumentDownloadURL(ctx context.Context, planID primitive.ObjectID) (string, error)
	// CompleteTask is the manual completion path. Completing an already
	// complete task is a no-op, not an error.
	CompleteTask(ctx context.Context, taskID primitive.ObjectID, actual *ActualValues) (*domain.ScheduledTask, error)
}

// --- Service Implementation ---

type planService struct {
	planRepo repository.PlanRepository
	taskRepo repository.TaskRepository
	archive  storage.PlanArchive // nil when archiving is not configured
}

// NewPlanService creates a new instance of planService. archive may be nil.
func NewPlanService(planRepo repository.PlanRepository, taskRepo repository.TaskRepository, archive storage.PlanArchive) PlanService {
	return &planService{
		planRepo: planRepo,
		taskRepo: taskRepo,
		archive:  archive,
	}
}

// Materialize implements the scheduling algorithm:
//  1. Normalize the anchor date back to the Monday of its week, so a
//     single-week plan always spans exactly one Monday-Sunday range no matter
//     which day the user accepted it on.
//  2. Map each day label to an offset from that Monday (week k of a
//     multi-week block starts 7*k days later). Unrecognized labels fall back
//     to Monday instead of aborting materialization.
//  3. Materialize supplementary entries as extra tasks on the same date with
//     distinct slots.
//
// The plan and its tasks become visible together: a failure inserting tasks
// triggers compensating cleanup of everything written so far.
func (s *planService) Materialize(ctx context.Context, doc domain.PlanDocument, rawDoc []byte, anchor time.Time, shape domain.PlanShape) (*domain.Plan, error) {
	if shape != domain.ShapeSingleWeek && shape != domain.ShapeMultiWeekBlock {
		return nil, ErrUnknownPlanShape
	}

	weekGroups := doc.WeekGroups(shape)
	if doc.DayCount(shape) == 0 {
		return nil, ErrEmptyPlanDocument
	}

	if rawDoc == nil {
		var err error
		rawDoc, err = json.Marshal(doc)
		if err != nil {
			return nil, err
		}
	}

	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}
	weekStart := mondayOfWeek(anchor)
	endDate := weekStart.AddDate(0, 0, 7*len(weekGroups)-1)

	name := doc.Name
	if name == "" {
		name = "Training Plan"
	}

	plan := &domain.Plan{
		Name:      name,
		Shape:     shape,
		StartDate: weekStart,
		EndDate:   endDate,
		Goal:      doc.Goal,
		Document:  rawDoc,
		IsActive:  true,
	}

	// Misdeclared day labels can pile several entries onto one date (the
	// Monday fallback above); bumping to the next free slot keeps
	// (date, slot) unique without rejecting the document.
	usedSlots := make(map[time.Time]map[int]bool)
	slotFor := func(date time.Time, desired int) int {
		slots := usedSlots[date]
		if slots == nil {
			slots = make(map[int]bool)
			usedSlots[date] = slots
		}
		s := desired
		for slots[s] {
			s++
		}
		slots[s] = true
		return s
	}

	var tasks []domain.ScheduledTask
	for weekIdx, days := range weekGroups {
		currentWeekStart := weekStart.AddDate(0, 0, 7*weekIdx)
		for _, day := range days {
			offset, known := domain.WeekdayOffset(day.Day)
			if !known {
				log.Printf("WARN: unrecognized day label %q in plan %q, defaulting to Monday", day.Day, name)
			}
			date := currentWeekStart.AddDate(0, 0, offset)

			tasks = append(tasks, domain.ScheduledTask{
				ScheduledDate:   date,
				Slot:            slotFor(date, 0),
				Category:        defaultString(day.Category, "other"),
				Title:           defaultString(day.Title, "Workout"),
				Description:     day.Description,
				DurationMinutes: day.DurationMinutes,
				Intensity:       defaultIntensity(day.Intensity),
				TargetHRZone:    day.TargetHRZone,
				Steps:           day.Steps,
			})

			for i, supp := range day.Supplementary {
				tasks = append(tasks, domain.ScheduledTask{
					ScheduledDate:   date,
					Slot:            slotFor(date, i+1),
					Category:        defaultString(supp.Category, domain.CategorySupplementary),
					Title:           defaultString(supp.Title, "Supplementary"),
					Description:     supp.Description,
					DurationMinutes: supp.DurationMinutes,
					Intensity:       defaultIntensity(supp.Intensity),
				})
			}
		}
	}

	plan.TotalTasks = len(tasks)
	plan.CompletedTasks = 0

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].PlanID = planID
	}

	if err := s.taskRepo.CreateMany(ctx, tasks); err != nil {
		// Compensating cleanup: no partial plan may stay visible.
		if cleanupErr := s.taskRepo.DeleteByPlanID(ctx, planID); cleanupErr != nil {
			log.Printf("ERROR: cleanup of tasks for plan %s failed: %v", planID.Hex(), cleanupErr)
		}
		if cleanupErr := s.planRepo.Delete(ctx, planID); cleanupErr != nil {
			log.Printf("ERROR: cleanup of plan %s failed: %v", planID.Hex(), cleanupErr)
		}
		return nil, err
	}

	s.archiveDocument(ctx, plan, rawDoc)

	return plan, nil
}

// archiveDocument pushes the raw blob to object storage. Best effort: the
// plan is already committed, so archive failures only log.
func (s *planService) archiveDocument(ctx context.Context, plan *domain.Plan, rawDoc []byte) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.StoreDocument(ctx, plan.ID.Hex(), rawDoc)
	if err != nil {
		log.Printf("WARN: failed to archive document for plan %s: %v", plan.ID.Hex(), err)
		return
	}
	if err := s.planRepo.SetArchiveKey(ctx, plan.ID, key); err != nil {
		log.Printf("WARN: failed to record archive key for plan %s: %v", plan.ID.Hex(), err)
		return
	}
	plan.ArchiveKey = key
}

func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, []domain.ScheduledTask, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}
	tasks, err := s.taskRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return plan, tasks, nil
}

func (s *planService) ListPlans(ctx context.Context, activeOnly bool) ([]domain.Plan, error) {
	return s.planRepo.List(ctx, activeOnly)
}

func (s *planService) GetTasksInRange(ctx context.Context, planID primitive.ObjectID, from, to time.Time) ([]domain.ScheduledTask, error) {
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.taskRepo.GetByPlanAndDateRange(ctx, planID, from, to)
}

func (s *planService) DeactivatePlan(ctx context.Context, planID primitive.ObjectID) error {
	err := s.planRepo.SetActive(ctx, planID, false)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

func (s *planService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	if err := s.taskRepo.DeleteByPlanID(ctx, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	if s.archive != nil && plan.ArchiveKey != "" {
		if err := s.archive.DeleteDocument(ctx, plan.ArchiveKey); err != nil {
			log.Printf("WARN: failed to delete archived document %s: %v", plan.ArchiveKey, err)
		}
	}
	return nil
}

func (s *planService) DocumentDownloadURL(ctx context.Context, planID primitive.ObjectID) (string, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrPlanNotFound
		}
		return "", err
	}
	if s.archive == nil || plan.ArchiveKey == "" {
		return "", ErrDocumentNotArchived
	}
	return s.archive.GeneratePresignedDownloadURL(ctx, plan.ArchiveKey, storage.DefaultPresignedURLExpiry)
}

// CompleteTask marks a task complete outside reconciliation (e.g. the user
// confirms a session the tracker never recorded).
func (s *planService) CompleteTask(ctx context.Context, taskID primitive.ObjectID, actual *ActualValues) (*domain.ScheduledTask, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.IsCompleted {
		// Idempotent re-completion.
		return task, nil
	}

	completion := domain.TaskCompletion{CompletedAt: time.Now().UTC()}
	if actual != nil {
		completion.ActualDurationMinutes = actual.DurationMinutes
		completion.ActualCalories = actual.Calories
		completion.Notes = actual.Notes
	}

	transitioned, err := s.taskRepo.MarkComplete(ctx, taskID, completion)
	if err != nil {
		return nil, err
	}
	if transitioned {
		if err := s.planRepo.IncrementCompleted(ctx, task.PlanID, 1); err != nil {
			log.Printf("WARN: failed to increment completed count for plan %s: %v", task.PlanID.Hex(), err)
		}
	}

	return s.taskRepo.GetByID(ctx, taskID)
}

// mondayOfWeek shifts a date backward to the Monday of its week, at UTC
// midnight.
func mondayOfWeek(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultIntensity(v domain.Intensity) domain.Intensity {
	if v == "" {
		return domain.IntensityModerate
	}
	return v
}
