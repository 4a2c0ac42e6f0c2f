// internal/domain/task.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intensity tier for a scheduled task.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// Well-known task categories. The category field is an open string (upstream
// documents use free-form labels like "easy_run" or "tempo"); these constants
// cover the values this subsystem treats specially.
const (
	CategoryRest          = "rest"
	CategoryRecovery      = "recovery"
	CategoryStrength      = "strength"
	CategorySupplementary = "supplementary"
)

// TaskStep is one ordered sub-step of a workout (e.g., a warmup or an
// interval repeat). Steps are preserved for display; this subsystem does not
// interpret their end conditions or targets.
type TaskStep struct {
	Order           int      `bson:"order" json:"order"`
	Description     string   `bson:"description,omitempty" json:"description,omitempty"`
	DurationMinutes *int     `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	DistanceKM      *float64 `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
	Target          string   `bson:"target,omitempty" json:"target,omitempty"` // pace or HR target range, free-form
}

// TaskAdjustment records what the adjustment engine changed and why.
type TaskAdjustment struct {
	OriginalDurationMinutes int       `bson:"originalDurationMinutes,omitempty" json:"originalDurationMinutes,omitempty"`
	OriginalIntensity       Intensity `bson:"originalIntensity,omitempty" json:"originalIntensity,omitempty"`
	Factor                  float64   `bson:"factor" json:"factor"`
	Reason                  string    `bson:"reason" json:"reason"`
	AdjustedAt              time.Time `bson:"adjustedAt" json:"adjustedAt"`
}

// TaskCompletion carries the fields written when a task transitions to
// complete, either via reconciliation or the manual path.
type TaskCompletion struct {
	CompletedAt           time.Time
	LinkedActivityID      string
	ActualDurationMinutes *int
	ActualCalories        *int
	Notes                 string
}

// ScheduledTask is one dated, completable unit of training within a Plan.
type ScheduledTask struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID primitive.ObjectID `bson:"planId" json:"planId"`
	// ScheduledDate is normalized to UTC midnight; only the calendar day matters.
	ScheduledDate time.Time `bson:"scheduledDate" json:"scheduledDate"`
	// Slot distinguishes multiple tasks on the same date: 0 is the main
	// session, supplementary activities take 1 and up.
	Slot            int        `bson:"slot" json:"slot"`
	Category        string     `bson:"category" json:"category"`
	Title           string     `bson:"title" json:"title"`
	Description     string     `bson:"description,omitempty" json:"description,omitempty"`
	DurationMinutes int        `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Intensity       Intensity  `bson:"intensity" json:"intensity"`
	TargetHRZone    string     `bson:"targetHrZone,omitempty" json:"targetHrZone,omitempty"`
	Steps           []TaskStep `bson:"steps,omitempty" json:"steps,omitempty"`

	IsCompleted           bool            `bson:"isCompleted" json:"isCompleted"`
	CompletedAt           *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	LinkedActivityID      string          `bson:"linkedActivityId,omitempty" json:"linkedActivityId,omitempty"`
	ActualDurationMinutes *int            `bson:"actualDurationMinutes,omitempty" json:"actualDurationMinutes,omitempty"`
	ActualCalories        *int            `bson:"actualCalories,omitempty" json:"actualCalories,omitempty"`
	Notes                 string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Adjustment            *TaskAdjustment `bson:"adjustment,omitempty" json:"adjustment,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsRest reports whether this task is a rest day. Rest tasks are never
// matched against recorded activities. Categories arrive in whatever casing
// the upstream document used.
func (t *ScheduledTask) IsRest() bool {
	return strings.EqualFold(t.Category, CategoryRest)
}
