// internal/api/plan_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/orkunisitmak/orktrack/internal/domain"
	"github.com/orkunisitmak/orktrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

type PlanHandler struct {
	planService      service.PlanService
	reconcileService service.ReconcileService
	adjustService    service.AdjustService
	readinessService service.ReadinessService
}

func NewPlanHandler(
	planService service.PlanService,
	reconcileService service.ReconcileService,
	adjustService service.AdjustService,
	readinessService service.ReadinessService,
) *PlanHandler {
	return &PlanHandler{
		planService:      planService,
		reconcileService: reconcileService,
		adjustService:    adjustService,
		readinessService: readinessService,
	}
}

// --- DTOs ---

type MaterializePlanRequest struct {
	// Document is the plan content as returned by the plan-content provider.
	Document   json.RawMessage `json:"document" binding:"required"`
	AnchorDate string          `json:"anchorDate,omitempty"` // YYYY-MM-DD; defaults to today
	Shape      string          `json:"shape" binding:"required"`
}

type PlanResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Shape              string    `json:"shape"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	Goal               string    `json:"goal,omitempty"`
	IsActive           bool      `json:"isActive"`
	TotalTasks         int       `json:"totalTasks"`
	CompletedTasks     int       `json:"completedTasks"`
	ProgressPercentage float64   `json:"progressPercentage"`
	CreatedAt          time.Time `json:"createdAt"`
}

func MapPlanToResponse(plan *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:                 plan.ID.Hex(),
		Name:               plan.Name,
		Shape:              string(plan.Shape),
		StartDate:          plan.StartDate.Format(dateLayout),
		EndDate:            plan.EndDate.Format(dateLayout),
		Goal:               plan.Goal,
		IsActive:           plan.IsActive,
		TotalTasks:         plan.TotalTasks,
		CompletedTasks:     plan.CompletedTasks,
		ProgressPercentage: plan.ProgressPercentage(),
		CreatedAt:          plan.CreatedAt,
	}
}

type ActivityPayload struct {
	ID              string  `json:"id" binding:"required"`
	Name            string  `json:"name,omitempty"`
	Type            string  `json:"type" binding:"required"`
	Date            string  `json:"date" binding:"required"` // YYYY-MM-DD
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	Calories        int     `json:"calories,omitempty"`
	AvgHR           int     `json:"avgHr,omitempty"`
}

type ReconcileRequest struct {
	// Activities is the caller-resolved window of recent recorded activities.
	Activities []ActivityPayload `json:"activities"`
}

type AdjustPlanRequest struct {
	Mode      string                 `json:"mode,omitempty"` // defaults to auto
	Readiness ReadinessInputsPayload `json:"readiness"`
}

// --- Handler Methods ---

// MaterializePlan converts an accepted plan document into a dated, persisted
// plan. Fails with 400 when the document has no day entries.
func (h *PlanHandler) MaterializePlan(c *gin.Context) {
	var req MaterializePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var doc domain.PlanDocument
	if err := json.Unmarshal(req.Document, &doc); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan document: "+err.Error())
		return
	}

	anchor := time.Now().UTC()
	if req.AnchorDate != "" {
		parsed, err := time.Parse(dateLayout, req.AnchorDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid anchor date, expected YYYY-MM-DD.")
			return
		}
		anchor = parsed
	}

	plan, err := h.planService.Materialize(c.Request.Context(), doc, req.Document, anchor, domain.PlanShape(req.Shape))
	if err != nil {
		if errors.Is(err, service.ErrEmptyPlanDocument) || errors.Is(err, service.ErrUnknownPlanShape) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to materialize plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// ListPlans returns all plans, optionally restricted to active ones.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	plans, err := h.planService.ListPlans(c.Request.Context(), activeOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans.")
		return
	}

	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, MapPlanToResponse(&plans[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetPlan returns one plan together with all its scheduled tasks.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	plan, tasks, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":  MapPlanToResponse(plan),
		"tasks": tasks,
	})
}

// GetPlanTasks returns a plan's tasks in an optional date range.
func (h *PlanHandler) GetPlanTasks(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	from, err := parseDateQuery(c, "from", time.Time{})
	if err != nil {
		return
	}
	to, err := parseDateQuery(c, "to", time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return
	}

	tasks, err := h.planService.GetTasksInRange(c.Request.Context(), planID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve tasks.")
		}
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// DeactivatePlan soft-deactivates a superseded plan.
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	if err := h.planService.DeactivatePlan(c.Request.Context(), planID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to deactivate plan.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated."})
}

// DeletePlan removes a plan and cascade-deletes its tasks.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted."})
}

// GetPlanDocumentURL returns a temporary download link for the archived raw
// plan document. 404 when archiving is disabled or the plan has no archived
// blob.
func (h *PlanHandler) GetPlanDocumentURL(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	url, err := h.planService.DocumentDownloadURL(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) || errors.Is(err, service.ErrDocumentNotArchived) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate document URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ReconcileActivities links recorded activities from the request window to
// the plan's incomplete tasks.
func (h *PlanHandler) ReconcileActivities(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	window := make([]domain.Activity, 0, len(req.Activities))
	for _, a := range req.Activities {
		date, err := time.Parse(dateLayout, a.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid activity date, expected YYYY-MM-DD.")
			return
		}
		window = append(window, domain.Activity{
			ID:              a.ID,
			Name:            a.Name,
			Type:            a.Type,
			Date:            date,
			DurationSeconds: a.DurationSeconds,
			Calories:        a.Calories,
			AvgHR:           a.AvgHR,
		})
	}

	matches, err := h.reconcileService.Reconcile(c.Request.Context(), planID, window)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to reconcile activities.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matchedCount": len(matches),
		"matches":      matches,
	})
}

// AdjustPlan rewrites the plan's remaining tasks based on the supplied
// readiness inputs and mode.
func (h *PlanHandler) AdjustPlan(c *gin.Context) {
	planID, ok := planIDFromPath(c)
	if !ok {
		return
	}

	var req AdjustPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	mode := service.AdjustmentMode(req.Mode)
	if mode == "" {
		mode = service.ModeAuto
	}

	inputs, err := req.Readiness.toInputs()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	snapshot := h.readinessService.Evaluate(inputs)

	result, err := h.adjustService.Adjust(c.Request.Context(), planID, snapshot, mode)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrUnknownAdjustmentMode) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to adjust plan.")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- Helpers ---

func planIDFromPath(c *gin.Context) (primitive.ObjectID, bool) {
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return primitive.NilObjectID, false
	}
	return planID, true
}

func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid '"+name+"' date, expected YYYY-MM-DD.")
		return time.Time{}, err
	}
	return parsed, nil
}
