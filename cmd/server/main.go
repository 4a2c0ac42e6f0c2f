package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orkunisitmak/orktrack/internal/api"
	"github.com/orkunisitmak/orktrack/internal/config"
	"github.com/orkunisitmak/orktrack/internal/repository/mongo"
	"github.com/orkunisitmak/orktrack/internal/service"
	"github.com/orkunisitmak/orktrack/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting orktrack server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient, cfg.Database.ConnectTimeout); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureTaskIndexes(ctx, appDB.Collection("scheduled_tasks"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Plan Archive (optional) ---
	var archive storage.PlanArchive
	if cfg.Archive.Enabled() {
		log.Println("Initializing plan document archive...")
		archive, err = storage.NewS3Archive(cfg.Archive)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize plan archive: %v", err)
		}
	} else {
		log.Println("Plan document archiving disabled (no bucket configured).")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	planRepo := mongo.NewMongoPlanRepository(appDB)
	taskRepo := mongo.NewMongoTaskRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	readinessService := service.NewReadinessService()
	planService := service.NewPlanService(planRepo, taskRepo, archive)
	reconcileService := service.NewReconcileService(planRepo, taskRepo)
	adjustService := service.NewAdjustService(planRepo, taskRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, readinessService, planService, reconcileService, adjustService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
