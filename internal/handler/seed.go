package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/seed"
)

// SeedHandler loads the built-in reward catalog.  It is only routed outside
// production.
type SeedHandler struct {
	Rewards *repository.RewardRepo
	Cache   *middleware.ResponseCache
	Log     logrus.FieldLogger
}

func NewSeedHandler(rewards *repository.RewardRepo, cache *middleware.ResponseCache, log logrus.FieldLogger) *SeedHandler {
	return &SeedHandler{Rewards: rewards, Cache: cache, Log: log}
}

// SeedRewards inserts catalog entries not yet present and reports how many were
// added.
func (h *SeedHandler) SeedRewards(c echo.Context) error {
	catalog, err := seed.Rewards()
	if err != nil {
		return mapError(c, h.Log, err, "Failed to seed rewards")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	n, err := seed.Apply(ctx, h.Rewards, catalog)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to seed rewards")
	}
	if n > 0 {
		h.Cache.Invalidate(ctx, routeRewards, routeFeaturedRewards)
	}
	h.Log.WithField("count", n).Info("rewards seeded")
	return c.JSON(http.StatusOK, echo.Map{"message": "Rewards seeded successfully", "count": n})
}
