package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shortdiaryAPI/handlers"
	"shortdiaryAPI/internal/cache"
	"shortdiaryAPI/internal/config"
	"shortdiaryAPI/middleware"
	"shortdiaryAPI/services"

	_ "net/http/pprof"
)

var (
	cfg             *config.Config
	dbPool          *pgxpool.Pool
	streakCache     *cache.InMemory
	postService     *services.PostService
	statsService    *services.StatsService
	userService     *services.UserService
	reminderService *services.ReminderService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	streakCache = cache.NewInMemory()
	postService = services.NewPostService(dbPool, cfg.EditWindowDays)
	statsService = services.NewStatsService(postService, streakCache)
	postService.SetStatsService(statsService)
	userService = services.NewUserService(dbPool, statsService)
	reminderService = services.NewReminderService(postService)
	// No mail provider wired yet; the sweep logs what it would send.

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	postHandler := handlers.NewPostHandler(postService)
	userHandler := handlers.NewUserHandler(userService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "shortdiary-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/posts/random", postHandler.RandomPublicPost).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))

	protected.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	protected.HandleFunc("/posts", postHandler.ListRecentPosts).Methods("GET")
	protected.HandleFunc("/posts/{id}", postHandler.GetPost).Methods("GET")
	protected.HandleFunc("/posts/{id}", postHandler.UpdatePost).Methods("PUT")
	protected.HandleFunc("/posts/{id}", postHandler.DeletePost).Methods("DELETE")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/stats", userHandler.GetProfileStats).Methods("GET")
	protected.HandleFunc("/user/streak", statsHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/user/history", postHandler.YearHistory).Methods("GET")

	protected.HandleFunc("/leaderboards", statsHandler.GetLeaderboards).Methods("GET")

	if err := reminderService.Start(cfg.ReminderCron); err != nil {
		log.Fatal("Failed to start reminder scheduler:", err)
	}

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	reminderService.Stop()
	statsService.Stop()

	log.Println("Server shutdown complete")
}
