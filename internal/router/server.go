package router

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/config"
	"github.com/iliyamo/volunteer-credits/internal/handler"
	"github.com/iliyamo/volunteer-credits/internal/metrics"
	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/service"
)

// Deps is everything New needs.  Redis, Publisher and Metrics are optional.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        *sqlx.DB
	Redis     *redis.Client
	Publisher service.EventPublisher
	Metrics   *metrics.Metrics
	Log       logrus.FieldLogger
}

// New builds the Echo instance with every route and middleware registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))

	opts := service.Options{
		StrictOwnership: d.Cfg.StrictOwnership,
		Publisher:       d.Publisher,
		Log:             d.Log,
	}
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
		opts.Recorder = d.Metrics
		RegisterRoutes(e, d.Metrics.Handler())
	} else {
		RegisterRoutes(e, nil)
	}

	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	opps := repository.NewOpportunityRepo(d.DB)
	apps := repository.NewApplicationRepo(d.DB)
	rewards := repository.NewRewardRepo(d.DB)
	ledger := service.NewLedger(d.DB, opts)
	cache := middleware.NewResponseCache(d.Cache, d.Redis, d.Log)

	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	secret := d.Cfg.JWTSecret

	RegisterAuth(api, handler.NewAuthHandler(d.Cfg, users, tokens, d.Log), secret)
	RegisterOpportunities(api, handler.NewOpportunityHandler(opps, apps, cache, d.Log), secret)
	RegisterApplications(api, handler.NewApplicationHandler(apps, ledger, d.Log), secret)
	RegisterRewards(api, handler.NewRewardHandler(rewards, ledger, d.Log), cache, secret)
	RegisterAccount(api,
		handler.NewTransactionHandler(repository.NewLedgerRepo(d.DB), d.Log),
		handler.NewStatsHandler(repository.NewStatsRepo(d.DB), d.Log),
		secret)
	if !d.Cfg.IsProd() {
		RegisterSeed(api, handler.NewSeedHandler(rewards, cache, d.Log), secret)
	}
	return e
}
