package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/agendaav/room-booking/docs"
	"github.com/agendaav/room-booking/internal/api"
	"github.com/agendaav/room-booking/internal/api/handler"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/service"
	mongodb "github.com/agendaav/room-booking/internal/infrastructure/db/mongo"
	redisdb "github.com/agendaav/room-booking/internal/infrastructure/db/redis"
	"github.com/agendaav/room-booking/internal/infrastructure/jobs"
	"github.com/agendaav/room-booking/internal/infrastructure/queue"
	"github.com/agendaav/room-booking/internal/pkg/config"
	"github.com/agendaav/room-booking/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Room Booking API
// @version                     1.0
// @description                 Shared room reservations with conflict-free scheduling.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "room-booking",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	userRepo := mongodb.NewUserRepository(db)
	roomRepo := mongodb.NewRoomRepository(db)
	reservationRepo := mongodb.NewReservationRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	revokedRepo := mongodb.NewRevokedTokenRepository(db)

	// --- Background workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	audit := queue.NewDispatcher(cfg.Audit.Workers, eventRepo, log)
	audit.Start(workerCtx)

	// --- Services ---
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.Auth.TokenTTL, revokedRepo, log,
		service.WithRevocationCache(redisdb.NewRevocationCache(rdb)))
	hasher := service.NewCredentialStore(0)
	gate := service.NewGate(tokens, userRepo, log)
	authService := service.NewAuthService(userRepo, hasher, tokens, cfg.Auth.AdminEmails, log)
	userService := service.NewUserService(userRepo, hasher, log)
	roomService := service.NewRoomService(roomRepo, log)
	reservationService := service.NewReservationService(
		reservationRepo,
		roomRepo,
		eventRepo,
		redisdb.NewSlotLock(rdb, cfg.Schedule.LockTTL),
		audit,
		domain.ScheduleScope(cfg.Schedule.Scope),
		log,
	)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddPurge(cfg.Schedule.PurgeSchedule, tokens); err != nil {
		log.Fatal().Err(err).Msg("invalid purge schedule")
	}
	scheduler.Start()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:           log,
		Authenticator: gate,
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Rooms:         handler.NewRoomHandler(roomService),
		Reservations:  handler.NewReservationHandler(reservationService),
		Maintenance:   handler.NewMaintenanceHandler(tokens),
		Health:        handler.NewHealthHandler(),
		Readiness: handler.NewHealthDependenciesHandler(map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) },
		}),
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("schedule_scope", cfg.Schedule.Scope).
			Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
	stopWorkers()
	audit.Wait()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	log.Info().Msg("server stopped")
}
