package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/taskflow/taskflow-go/internal/config"
	"github.com/taskflow/taskflow-go/internal/handler"
	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/repository"
	"github.com/taskflow/taskflow-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := repository.RunMigrations(ctx, db); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handler.NewAuthHandler(authService, cfg.IsDevelopment())

	taskRepo := repository.NewTaskRepository(db)
	taskService := service.NewTaskService(taskRepo)
	taskHandler := handler.NewTaskHandler(taskService, cfg.IsDevelopment())

	metaHandler := handler.NewMetaHandler(cfg.Env)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.NotFound(handler.HandleNotFound)

	r.Get("/health", metaHandler.HandleHealth)
	r.Get("/api", metaHandler.HandleAPIInfo)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/auth/register", authHandler.HandleRegister)
		r.Post("/api/auth/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		r.Get("/api/auth/profile", authHandler.HandleGetProfile)
		r.Put("/api/auth/profile", authHandler.HandleUpdateProfile)

		r.Get("/api/tasks", taskHandler.HandleList)
		r.Get("/api/tasks/stats", taskHandler.HandleStats)
		r.Get("/api/tasks/{id}", taskHandler.HandleGet)
		r.Post("/api/tasks", taskHandler.HandleCreate)
		r.Put("/api/tasks/{id}", taskHandler.HandleUpdate)
		r.Delete("/api/tasks/{id}", taskHandler.HandleDelete)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
