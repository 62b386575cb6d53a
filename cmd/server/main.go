package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatform/config"
	"chatform/internal/cache"
	"chatform/internal/catalog"
	aicfg "chatform/internal/config"
	"chatform/internal/engine"
	"chatform/internal/repository"
	"chatform/internal/service"
	"chatform/internal/sink"
	"chatform/internal/transport/rest"
	"chatform/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	aiConfig := aicfg.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Extract: %s", aiConfig.Models.Extract)
	log.Printf("  Prompt:  %s", aiConfig.Models.Prompt)
	if aiConfig.IsEnabled() {
		log.Println("  API Key: configured")
	} else {
		log.Println("  API Key: NOT SET (using mock extractor)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Load the question catalog; fall back to the built-in one when the
	// collection has not been seeded yet
	catalogRepo := repository.NewCatalogRepo(mongoClient)
	cat := loadCatalog(ctx, catalogRepo)
	log.Printf("Catalog loaded: %d questions", cat.Len())

	rules := engine.NewRuleEngine(engine.DefaultRules())

	// Sinks
	var sinks []sink.Sink
	if cfg.SheetID != "" {
		sheetsSink, err := sink.NewSheetsSink(ctx, cfg.SheetCredentialsFile, cfg.SheetID, cfg.SheetName)
		if err != nil {
			log.Fatal("Failed to init Sheets sink:", err)
		}
		sinks = append(sinks, sheetsSink)
		log.Printf("Sheets sink enabled: %s!%s", cfg.SheetID, cfg.SheetName)
	} else {
		log.Println("SHEET_ID not set, Sheets sink disabled")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService()
	submissionRepo := repository.NewSubmissionRepo(mongoClient)
	submissionSvc := service.NewSubmissionService(cat, submissionRepo, sinks...)
	sessionCache := cache.NewSessionCache(rdb)
	extractor := service.NewExtractorService()
	prompter := service.NewPrompterService()
	sessionSvc := service.NewSessionService(cat, rules, sessionCache, extractor, prompter, submissionSvc)

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		SessionService:    sessionSvc,
		SubmissionService: submissionSvc,
		Catalog:           cat,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/sessions/{id}/messages")
		log.Println("  GET  /v1/sessions/{id}")
		log.Println("  GET  /v1/catalog")
		log.Println("  GET  /v1/submissions")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func loadCatalog(ctx context.Context, repo repository.CatalogRepo) *catalog.Catalog {
	defs, err := repo.Load(ctx)
	if err != nil || len(defs) == 0 {
		log.Println("Warning: question catalog not seeded, using built-in defaults")
		return catalog.Default()
	}

	cat, err := catalog.New(defs)
	if err != nil {
		log.Printf("Warning: stored catalog invalid (%v), using built-in defaults", err)
		return catalog.Default()
	}
	return cat
}
