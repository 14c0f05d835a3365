package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/repository"
)

type StatsHandler struct {
	Stats *repository.StatsRepo
	Log   logrus.FieldLogger
}

func NewStatsHandler(stats *repository.StatsRepo, log logrus.FieldLogger) *StatsHandler {
	return &StatsHandler{Stats: stats, Log: log}
}

// Police returns the caller's dashboard counters, computed fresh each time.
func (h *StatsHandler) Police(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s, err := h.Stats.PoliceStats(ctx, uid)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch stats")
	}
	return c.JSON(http.StatusOK, s)
}
