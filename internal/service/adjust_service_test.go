package service

import (
	"context"
	"testing"

	"github.com/orkunisitmak/orktrack/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAdjustFixture() (*memoryPlanRepo, *memoryTaskRepo, AdjustService) {
	planRepo := newMemoryPlanRepo()
	taskRepo := newMemoryTaskRepo()
	return planRepo, taskRepo, NewAdjustService(planRepo, taskRepo)
}

func TestAdjustAutoComposesFactors(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "tempo", Title: "Tempo", DurationMinutes: 60, Intensity: domain.IntensityHigh},
		{ScheduledDate: date(2024, 6, 4), Slot: 0, Category: "easy_run", Title: "Easy", DurationMinutes: 30, Intensity: domain.IntensityLow},
	})

	// Score below 50 (0.7) and sleep below 50 (0.9) compose to 0.63.
	snapshot := domain.ReadinessSnapshot{Score: 40, SleepScore: intPtr(30)}

	result, err := svc.Adjust(context.Background(), planID, snapshot, ModeAuto)
	require.NoError(t, err)
	require.InDelta(t, 0.63, result.Factor, 1e-9)
	require.True(t, result.NeedsRecovery)
	require.Equal(t, 2, result.AdjustedTasks)
	require.NotEmpty(t, result.Rationale)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)

	// 60 * 0.63 rounds to 38; high intensity drops to moderate under recovery.
	require.Equal(t, 38, tasks[0].DurationMinutes)
	require.Equal(t, domain.IntensityModerate, tasks[0].Intensity)
	require.NotNil(t, tasks[0].Adjustment)
	require.Equal(t, 60, tasks[0].Adjustment.OriginalDurationMinutes)
	require.Equal(t, domain.IntensityHigh, tasks[0].Adjustment.OriginalIntensity)

	// 30 * 0.63 rounds to 19; low intensity is untouched by recovery.
	require.Equal(t, 19, tasks[1].DurationMinutes)
	require.Equal(t, domain.IntensityLow, tasks[1].Intensity)
	require.Equal(t, domain.Intensity(""), tasks[1].Adjustment.OriginalIntensity)
}

func TestScaleDurationHalfUp(t *testing.T) {
	// 45 * 0.7 is 31.4999... in binary floating point; decimal half-up
	// expects 32.
	require.Equal(t, 32, scaleDuration(45, 0.7))
	require.Equal(t, 35, scaleDuration(30, 1.15))
	require.Equal(t, 38, scaleDuration(60, 0.63))
	require.Equal(t, 19, scaleDuration(30, 0.63))
}

func TestAdjustAutoHighReadinessIncreases(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "long_run", Title: "Long run", DurationMinutes: 90, Intensity: domain.IntensityModerate},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 90}, ModeAuto)
	require.NoError(t, err)
	require.InDelta(t, 1.1, result.Factor, 1e-9)
	require.False(t, result.NeedsRecovery)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, 99, tasks[0].DurationMinutes)
}

func TestAdjustAutoNeutralScoreChangesNothing(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "easy_run", Title: "Easy", DurationMinutes: 40, Intensity: domain.IntensityLow},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 75}, ModeAuto)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Factor, 1e-9)
	require.Equal(t, 0, result.AdjustedTasks)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, 40, tasks[0].DurationMinutes)
	require.Nil(t, tasks[0].Adjustment)
}

func TestAdjustSkipsCompletedTasks(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "tempo", Title: "Done", DurationMinutes: 45, Intensity: domain.IntensityHigh, IsCompleted: true},
		{ScheduledDate: date(2024, 6, 4), Slot: 0, Category: "tempo", Title: "Pending", DurationMinutes: 45, Intensity: domain.IntensityHigh},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 40}, ModeAuto)
	require.NoError(t, err)
	require.Equal(t, 1, result.AdjustedTasks)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, 45, tasks[0].DurationMinutes)
	require.Nil(t, tasks[0].Adjustment)
	require.Equal(t, 32, tasks[1].DurationMinutes)
}

func TestAdjustNoIncompleteTasks(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "tempo", Title: "Done", DurationMinutes: 45, IsCompleted: true},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 40}, ModeAuto)
	require.NoError(t, err)
	require.Equal(t, 0, result.AdjustedTasks)
}

func TestAdjustManualModes(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "easy_run", Title: "Easy", DurationMinutes: 40, Intensity: domain.IntensityLow},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 70}, ModeManualIncrease)
	require.NoError(t, err)
	require.InDelta(t, 1.15, result.Factor, 1e-9)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, 46, tasks[0].DurationMinutes)

	result, err = svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 70}, ModeManualDecrease)
	require.NoError(t, err)
	require.InDelta(t, 0.8, result.Factor, 1e-9)

	tasks, err = taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, 37, tasks[0].DurationMinutes)
}

func TestAdjustAddRecovery(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "interval", Title: "Intervals", DurationMinutes: 50, Intensity: domain.IntensityHigh},
		{ScheduledDate: date(2024, 6, 4), Slot: 0, Category: "easy_run", Title: "Easy", DurationMinutes: 30, Intensity: domain.IntensityLow},
	})

	result, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 70}, ModeAddRecovery)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Factor, 1e-9)
	require.True(t, result.NeedsRecovery)
	// Only the high-intensity task changes; durations stay as they were.
	require.Equal(t, 1, result.AdjustedTasks)

	tasks, err := taskRepo.GetByPlanID(context.Background(), planID)
	require.NoError(t, err)
	require.Equal(t, domain.IntensityModerate, tasks[0].Intensity)
	require.Equal(t, 50, tasks[0].DurationMinutes)
	require.Equal(t, domain.IntensityLow, tasks[1].Intensity)
	require.Nil(t, tasks[1].Adjustment)
}

func TestAdjustUnknownMode(t *testing.T) {
	planRepo, taskRepo, svc := newAdjustFixture()

	planID := seedPlanWithTasks(t, planRepo, taskRepo, []domain.ScheduledTask{
		{ScheduledDate: date(2024, 6, 3), Slot: 0, Category: "easy_run", Title: "Easy", DurationMinutes: 40},
	})

	_, err := svc.Adjust(context.Background(), planID, domain.ReadinessSnapshot{Score: 70}, AdjustmentMode("turbo"))
	require.ErrorIs(t, err, ErrUnknownAdjustmentMode)
}

func TestAdjustPlanNotFound(t *testing.T) {
	_, _, svc := newAdjustFixture()

	_, err := svc.Adjust(context.Background(), primitive.NewObjectID(), domain.ReadinessSnapshot{Score: 70}, ModeAuto)
	require.ErrorIs(t, err, ErrPlanNotFound)
}
