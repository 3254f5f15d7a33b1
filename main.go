package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Jostyn07/Asesoriasth-backend/config"
	"github.com/Jostyn07/Asesoriasth-backend/handler"
	"github.com/Jostyn07/Asesoriasth-backend/middleware"
	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
	"github.com/Jostyn07/Asesoriasth-backend/service"
	"github.com/Jostyn07/Asesoriasth-backend/store"
)

func main() {
	// Local development secrets; absent in deployed environments
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Connect to PostgreSQL (primary store)
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	if err := store.CreateSchema(db); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready")

	// Object storage for attachments
	storageSvc, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize storage service", "error", err)
		os.Exit(1)
	}
	if err := storageSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure storage bucket", "error", err)
		os.Exit(1)
	}

	// Mirror sink: spreadsheet bridge behind the bounded-retry writer
	sheetsSvc := service.NewSheetsService(&cfg.Sheets)
	mirror := service.NewMirrorWriter(sheetsSvc, cfg.Sheets.RetryMax,
		time.Duration(cfg.Sheets.RetryBaseMs)*time.Millisecond)

	clientStore := store.NewClientStore(db)
	draftStore := store.NewDraftStore(db, cfg.Drafts.ListLimit, service.NewDraftID)

	submissionSvc := service.NewSubmissionService(clientStore, mirror, storageSvc, &cfg.Sheets)

	authHandler := handler.NewAuthHandler(cfg)
	draftHandler := handler.NewDraftHandler(draftStore)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	uploadHandler := handler.NewUploadHandler(storageSvc)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/login", authHandler.Login)

		api.POST("/drafts/save", draftHandler.Save)
		api.GET("/drafts/load/:draftId", draftHandler.Load)
		api.GET("/drafts/list", draftHandler.List)
		api.DELETE("/drafts/delete/:draftId", draftHandler.Delete)

		api.POST("/submit-form-data", submissionHandler.Submit)
		api.POST("/upload-files", uploadHandler.UploadFiles)
		api.POST("/create-folder", uploadHandler.CreateFolder)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
