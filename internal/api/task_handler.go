// internal/api/task_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/orkunisitmak/orktrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	planService service.PlanService
}

func NewTaskHandler(planService service.PlanService) *TaskHandler {
	return &TaskHandler{planService: planService}
}

// CompleteTaskRequest carries optional observed values for a manual completion.
type CompleteTaskRequest struct {
	ActualDurationMinutes *int   `json:"actualDurationMinutes,omitempty"`
	ActualCalories        *int   `json:"actualCalories,omitempty"`
	Notes                 string `json:"notes,omitempty"`
}

// CompleteTask marks a task complete without a linked activity. Completing an
// already-complete task succeeds without changing anything.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	taskID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid task ID format.")
		return
	}

	// An empty body is fine; all actual values are optional.
	var req CompleteTaskRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	task, err := h.planService.CompleteTask(c.Request.Context(), taskID, &service.ActualValues{
		DurationMinutes: req.ActualDurationMinutes,
		Calories:        req.ActualCalories,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to complete task.")
		}
		return
	}

	c.JSON(http.StatusOK, task)
}
