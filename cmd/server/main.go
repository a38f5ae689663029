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

	"evermart/media-service/internal/api"
	"evermart/media-service/internal/auth"
	"evermart/media-service/internal/cache"
	"evermart/media-service/internal/config"
	"evermart/media-service/internal/repository"
	mongoRepo "evermart/media-service/internal/repository/mongo"
	"evermart/media-service/internal/service"
	"evermart/media-service/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Media Service...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Shadow Store (optional) ---
	var shadowRepo repository.AssetShadowRepository
	if cfg.Database.URI != "" {
		dbClient, err := mongoRepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongoRepo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		shadowRepo = mongoRepo.NewMongoAssetRepository(appDB)
		log.Println("Shadow store connection established.")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongoRepo.EnsureAssetIndexes(ctx, appDB.Collection("media_assets"))
			log.Println("Index creation process completed.")
		}()
	} else {
		log.Println("WARN: No database URI configured, shadow-store writes disabled.")
	}

	// --- Initialize Storage ---
	log.Println("Initializing object storage...")
	objectStorage, err := storage.NewS3Storage(cfg.Storage)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Cache ---
	assetCache := cache.New(cfg.Cache.TTL)

	// --- Initialize Auth Verifier ---
	if cfg.Auth.VerifyURL == "" {
		log.Fatalf("FATAL: auth.verify_url must be configured")
	}
	verifier := auth.NewHTTPVerifier(cfg.Auth.VerifyURL, cfg.Auth.Timeout)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	mediaService := service.NewMediaService(objectStorage, assetCache, shadowRepo, service.MediaConfig{
		MediaPrefix:      cfg.Storage.MediaPrefix,
		PublicBaseURL:    cfg.Storage.PublicBaseURL,
		MaxSizeBytes:     cfg.Upload.MaxSizeBytes,
		AllowedMimeTypes: cfg.Upload.AllowedMimeTypes,
	})
	logoService := service.NewLogoService(objectStorage, assetCache, shadowRepo, service.LogoConfig{
		LogoPrefix:       cfg.Storage.LogoPrefix,
		PublicBaseURL:    cfg.Storage.PublicBaseURL,
		MaxSizeBytes:     cfg.Upload.MaxSizeBytes,
		AllowedMimeTypes: cfg.Upload.AllowedMimeTypes,
	})

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, verifier, mediaService, logoService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
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
