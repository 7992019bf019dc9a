package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	_ "github.com/ritmo-app/ritmo-sync-engine/docs"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/cache"
	adapterHTTP "github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/repository"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Ritmo Sync Engine API
// @version         1.0
// @description     Offline-first habit tracking backend.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables.")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	serverPort := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}
	jwtIssuer := getEnv("JWT_ISSUER", "ritmo-sync-engine")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rdb, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		rdb = nil
	}

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb)
	}
	dayRepo := repository.NewPostgresDayRepository(db)
	eventRepo := repository.NewPostgresEventRepository(db)
	fieldRepo := repository.NewPostgresFieldRepository(db)
	templateRepo := repository.NewPostgresTemplateRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.DB)

	streakWorker := workers.NewStreakWorker(habitRepo, dayRepo)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	streakWorker.Start(workerCtx)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 24*time.Hour, userRepo)
	habitService := services.NewHabitService(habitRepo)
	dayService := services.NewDayService(dayRepo, habitRepo, fieldRepo, streakWorker)
	eventService := services.NewEventService(eventRepo)
	fieldService := services.NewFieldService(fieldRepo)
	templateService := services.NewTemplateService(templateRepo)
	statsService := services.NewStatsService(habitRepo, dayRepo)
	syncService := services.NewSyncService(habitRepo, dayRepo, eventRepo, fieldRepo, templateRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService),
		DayHandler:      adapterHTTP.NewDayHandler(dayService),
		EventHandler:    adapterHTTP.NewEventHandler(eventService),
		FieldHandler:    adapterHTTP.NewFieldHandler(fieldService),
		TemplateHandler: adapterHTTP.NewTemplateHandler(templateService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		SyncHandler:     adapterHTTP.NewSyncHandler(syncService),
		TokenService:    tokenService,
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Ritmo Sync Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	workerCancel()

	log.Println("Server stopped gracefully.")
}
