package api

import (
	"net/http"

	"github.com/orkunisitmak/orktrack/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	readinessService service.ReadinessService,
	planService service.PlanService,
	reconcileService service.ReconcileService,
	adjustService service.AdjustService,
) {

	planHandler := NewPlanHandler(planService, reconcileService, adjustService, readinessService)
	taskHandler := NewTaskHandler(planService)
	readinessHandler := NewReadinessHandler(readinessService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(authMiddleware)
	{
		// --- Readiness ---
		apiV1.POST("/readiness", readinessHandler.EvaluateReadiness)

		// --- Plan Routes ---
		planGroup := apiV1.Group("/plans")
		{
			planGroup.POST("", planHandler.MaterializePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.GET("/:id/tasks", planHandler.GetPlanTasks)
			planGroup.GET("/:id/document", planHandler.GetPlanDocumentURL)
			planGroup.POST("/:id/deactivate", planHandler.DeactivatePlan)
			planGroup.DELETE("/:id", planHandler.DeletePlan)
			planGroup.POST("/:id/reconcile", planHandler.ReconcileActivities)
			planGroup.POST("/:id/adjust", planHandler.AdjustPlan)
		}

		// --- Task Routes ---
		taskGroup := apiV1.Group("/tasks")
		{
			taskGroup.POST("/:id/complete", taskHandler.CompleteTask)
		}
	}
}
