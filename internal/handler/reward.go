package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/service"
)

// Cached reward listings.
const (
	routeRewards         = "/api/rewards"
	routeFeaturedRewards = "/api/rewards/featured"
)

type RewardHandler struct {
	Rewards *repository.RewardRepo
	Ledger  *service.Ledger
	Log     logrus.FieldLogger
}

func NewRewardHandler(rewards *repository.RewardRepo, ledger *service.Ledger, log logrus.FieldLogger) *RewardHandler {
	return &RewardHandler{Rewards: rewards, Ledger: ledger, Log: log}
}

func (h *RewardHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rewards, err := h.Rewards.ListActive(ctx)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch rewards")
	}
	return c.JSON(http.StatusOK, rewards)
}

func (h *RewardHandler) Featured(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rewards, err := h.Rewards.ListFeatured(ctx)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch featured rewards")
	}
	return c.JSON(http.StatusOK, rewards)
}

// Redeem spends the caller's credits on a reward and returns the voucher.
func (h *RewardHandler) Redeem(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Ledger.Redeem(ctx, uid, c.Param("id"))
	if err != nil {
		return mapError(c, h.Log, err, "Failed to redeem reward")
	}
	return c.JSON(http.StatusOK, res)
}
