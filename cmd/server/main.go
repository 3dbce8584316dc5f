package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"partner-calendar-backend/internal/config"
	"partner-calendar-backend/internal/database"
	"partner-calendar-backend/internal/directory"
	"partner-calendar-backend/internal/gemini"
	"partner-calendar-backend/internal/handlers"
	"partner-calendar-backend/internal/lifecycle"
	"partner-calendar-backend/internal/middleware"
	"partner-calendar-backend/internal/runner"
	"partner-calendar-backend/internal/store"
	"partner-calendar-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Partner directory source: Postgres when DATABASE_URL is set, otherwise
	// the published sheet CSV feed.
	var source directory.Source
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize migrator: %v", err)
		} else {
			defer migrator.Close()
			if err := migrator.Run(); err != nil {
				log.Printf("Warning: Migration failed: %v", err)
			} else {
				log.Println("Migrations completed successfully")
			}
		}

		pgSource, err := directory.NewPostgresDirectory(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize partner directory: %v", err)
		}
		defer pgSource.Close()
		source = pgSource
	} else {
		source = directory.NewSheetDirectory(cfg.SheetCSVURL)
	}

	// Initialize Gemini client
	geminiClient := gemini.NewClient(cfg.GeminiAPIBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.TemplatesDir)

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient := supabase.NewStorageClient(supabaseClient, cfg.SupabaseStorageBucket, cfg.BackupRootFolder)
	realtimeClient := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)

	// Initialize stores
	queueStore, err := store.NewQueueStore(cfg.OutputRoot)
	if err != nil {
		log.Fatalf("Failed to initialize queue store: %v", err)
	}
	partnerStore, err := store.NewPartnerStore(cfg.OutputRoot)
	if err != nil {
		log.Fatalf("Failed to initialize partner store: %v", err)
	}

	fetcher := directory.NewDriveFetcher()
	queueRunner := runner.New(queueStore, partnerStore, geminiClient, fetcher, realtimeClient)
	controller := lifecycle.NewController(partnerStore, source, geminiClient, fetcher, storageClient, realtimeClient)

	// Initialize handlers
	partnersHandler := handlers.NewPartnersHandler(source, partnerStore, storageClient)
	queueHandler := handlers.NewQueueHandler(queueStore, partnerStore, source, queueRunner)
	lifecycleHandler := handlers.NewLifecycleHandler(controller)

	// Optional timer loop; by default the queue advances only via the
	// explicit advance endpoint.
	if cfg.RunnerIntervalSeconds > 0 {
		interval := time.Duration(cfg.RunnerIntervalSeconds) * time.Second
		go func() {
			for range time.Tick(interval) {
				if _, err := queueRunner.Advance(); err != nil {
					log.Printf("Queue cycle failed: %v", err)
				}
			}
		}()
		log.Printf("Queue runner ticking every %s", interval)
	}

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Partner directory
	api.GET("/partners", partnersHandler.ListPartners)
	api.POST("/partners/reload", partnersHandler.ReloadPartners)
	api.GET("/partners/:partner/status", partnersHandler.GetStatus)

	// Queue
	api.GET("/queue", queueHandler.GetQueue)
	api.POST("/queue/items", queueHandler.AddItems)
	api.POST("/queue/start", queueHandler.Start)
	api.POST("/queue/pause", queueHandler.Pause)
	api.POST("/queue/stop", queueHandler.Stop)
	api.DELETE("/queue", queueHandler.Clear)
	api.POST("/queue/advance", queueHandler.Advance)

	// Lifecycle
	api.POST("/partners/:partner/redo", lifecycleHandler.RedoMonth)
	api.POST("/partners/:partner/finalize", lifecycleHandler.Finalize)
	api.GET("/partners/:partner/package", lifecycleHandler.Package)
	api.POST("/partners/:partner/hydrate", lifecycleHandler.Hydrate)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
