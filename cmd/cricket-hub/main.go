package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/cache"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/config"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/consumer"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/formats"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/handlers"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/hub"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/middleware"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/publisher"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/scoring"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

func main() {
	cfg := config.Load()

	if err := log.Init(cfg.Development); err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting cricket-hub-live", zap.String("addr", cfg.Server.Addr))

	store, err := db.NewPostgres(cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("failed to open postgres", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal("postgres unreachable", zap.Error(err))
	}
	pingCancel()
	log.Info("connected to postgres")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis unreachable", zap.Error(err))
	}
	log.Info("connected to redis")

	reg, err := formats.Load(cfg.FormatsPath)
	if err != nil {
		log.Fatal("failed to load match formats", zap.Error(err))
	}

	snapshots := cache.NewSnapshotWriter(redisClient)
	scorePublisher := publisher.NewStreamPublisher(redisClient, cfg.Stream.ScoreStream, snapshots)
	scores := scoring.NewManager(store, scorePublisher, cfg.Scoring)

	h := hub.NewHub()
	go h.Run(ctx)

	streamConsumer := consumer.NewStreamConsumer(redisClient, h, cfg.Stream)
	go func() {
		if err := streamConsumer.Start(ctx); err != nil {
			log.Error("stream consumer stopped", zap.Error(err))
		}
	}()

	handler := handlers.NewHandler(ctx, store, scores, snapshots, h, reg, cfg.WebhookSecret)
	auth := middleware.NewAuthenticator(store)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", handler.Metrics)
	r.Get("/ws", handler.HandleWebSocket)
	r.Post("/api/v1/billing/webhook", handler.BillingWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Require(models.RoleViewer))

			r.Get("/tournaments", handler.ListTournaments)
			r.Get("/tournaments/{tournamentID}", handler.GetTournament)
			r.Get("/teams", handler.ListTeams)
			r.Get("/matches", handler.ListMatches)
			r.Get("/matches/{matchID}", handler.GetMatch)
			r.Get("/matches/{matchID}/score", handler.GetScore)
			r.Get("/formats", handler.Formats)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require(models.RoleAdmin))

			r.Post("/tournaments", handler.CreateTournament)
			r.Post("/teams", handler.CreateTeam)
			r.Post("/matches", handler.CreateMatch)
			r.Patch("/matches/{matchID}/status", handler.UpdateMatchStatus)
			r.Post("/matches/{matchID}/balls", handler.RecordBall)
			r.Delete("/matches/{matchID}/balls/last", handler.UndoLastBall)
			r.Post("/matches/{matchID}/over/end", handler.EndOver)
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("server error", zap.Error(err))

	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				log.Error("could not stop server", zap.Error(err))
			}
		}
	}

	log.Info("shutdown complete")
}
