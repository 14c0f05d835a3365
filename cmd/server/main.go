package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/config"
	"github.com/iliyamo/volunteer-credits/internal/database"
	"github.com/iliyamo/volunteer-credits/internal/logging"
	"github.com/iliyamo/volunteer-credits/internal/metrics"
	"github.com/iliyamo/volunteer-credits/internal/queue"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/router"
	"github.com/iliyamo/volunteer-credits/internal/scheduler"
	"github.com/iliyamo/volunteer-credits/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log := logging.Setup(cfg.LogLevel, cfg.IsProd())

	dsn := cfg.DBDSN
	if cfg.DBDriver == database.DriverMySQL {
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.DBDriver, log); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}
	m := metrics.New()

	qcfg := config.LoadQueueConfig()
	var publisher service.EventPublisher = service.NopPublisher{}
	if qcfg.Enabled {
		publisher = service.NewRabbitPublisher(qcfg.URL, qcfg.Queue, log)
		log.WithField("queue", qcfg.Queue).Info("ledger events enabled")
	}
	if qcfg.ConsumerEnabled {
		consumer := &queue.LedgerConsumer{URL: qcfg.URL, Queue: qcfg.Queue, LogPath: qcfg.LedgerLogPath, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("ledger consumer stopped")
			}
		}()
	}

	sched, err := scheduler.New(cfg.TokenCleanupSchedule, repository.NewTokenRepo(db), log, m.TokensPurged)
	if err != nil {
		log.WithError(err).Fatal("scheduler setup failed")
	}
	sched.Start()

	e := router.New(router.Deps{
		Cfg:       cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		DB:        db,
		Redis:     rdb,
		Publisher: publisher,
		Metrics:   m,
		Log:       log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
	}
}
