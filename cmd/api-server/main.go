package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/wakala-community/booking-desk/internal/api"
	"github.com/wakala-community/booking-desk/internal/availability"
	"github.com/wakala-community/booking-desk/internal/booking"
	"github.com/wakala-community/booking-desk/internal/config"
	"github.com/wakala-community/booking-desk/internal/db"
	"github.com/wakala-community/booking-desk/internal/metrics"
	redisclient "github.com/wakala-community/booking-desk/internal/redis"
	"github.com/wakala-community/booking-desk/internal/schedule"
	"github.com/wakala-community/booking-desk/internal/slot"
)

const version = "1.2.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, redisclient.Options{
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
		Timeout:  cfg.RedisTimeout,
	})
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	engineMetrics := metrics.NewEngineMetrics(nil)

	scheduleRepo := schedule.NewPgRepository(pgPool)
	resolver := schedule.NewResolver(scheduleRepo)
	slotStore := slot.NewPgStore(pgPool)
	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	regenerator := slot.NewRegenerator(slotStore, resolver, locker, engineMetrics)
	bookingRepo := booking.NewPgRepository(pgPool)
	coordinator := booking.NewCoordinator(slotStore, bookingRepo, engineMetrics)
	aggregator := availability.NewAggregator(slotStore, scheduleRepo)

	router := api.NewRouter(api.RouterConfig{
		ScheduleRepo: scheduleRepo,
		Resolver:     resolver,
		SlotStore:    slotStore,
		Regenerator:  regenerator,
		Coordinator:  coordinator,
		BookingRepo:  bookingRepo,
		Aggregator:   aggregator,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("api-server stopped")
}
