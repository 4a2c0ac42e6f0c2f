// internal/domain/plan.go
package domain

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanShape describes how the source document lays out its workouts.
type PlanShape string

const (
	ShapeSingleWeek     PlanShape = "single-week"      // flat list of day-labeled workouts
	ShapeMultiWeekBlock PlanShape = "multi-week-block" // workouts grouped into ordered weeks
)

// Plan represents one accepted training intent, materialized into dated tasks.
type Plan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Shape     PlanShape          `bson:"shape" json:"shape"`
	StartDate time.Time          `bson:"startDate" json:"startDate"` // always a Monday (normalized at materialization)
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Goal      string             `bson:"goal,omitempty" json:"goal,omitempty"`
	// Document is the original plan content as received. Retained for
	// traceability only; never re-parsed after materialization.
	Document       json.RawMessage `bson:"document,omitempty" json:"document,omitempty"`
	ArchiveKey     string          `bson:"archiveKey,omitempty" json:"archiveKey,omitempty"` // object key of the archived document blob
	IsActive       bool            `bson:"isActive" json:"isActive"`
	TotalTasks     int             `bson:"totalTasks" json:"totalTasks"`
	CompletedTasks int             `bson:"completedTasks" json:"completedTasks"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ProgressPercentage reports completion progress in [0, 100].
func (p *Plan) ProgressPercentage() float64 {
	if p.TotalTasks == 0 {
		return 0
	}
	return float64(p.CompletedTasks) / float64(p.TotalTasks) * 100
}
