package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/service"
)

// ApplicationHandler covers citizen applications and police status updates.
type ApplicationHandler struct {
	Apps   *repository.ApplicationRepo
	Ledger *service.Ledger
	Log    logrus.FieldLogger
}

func NewApplicationHandler(apps *repository.ApplicationRepo, ledger *service.Ledger, log logrus.FieldLogger) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Ledger: ledger, Log: log}
}

type applyReq struct {
	OpportunityID string `json:"opportunityId"`
}

type statusReq struct {
	Status string `json:"status"`
}

// Apply creates a pending application for the calling citizen.
func (h *ApplicationHandler) Apply(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req applyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.OpportunityID) == "" {
		return message(c, http.StatusBadRequest, "opportunityId is required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	app, err := h.Ledger.Apply(ctx, uid, strings.TrimSpace(req.OpportunityID))
	if err != nil {
		return mapError(c, h.Log, err, "Failed to create application")
	}
	return c.JSON(http.StatusCreated, app)
}

// Mine lists the caller's applications, newest first.
func (h *ApplicationHandler) Mine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	apps, err := h.Apps.ListByUser(ctx, uid)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch applications")
	}
	return c.JSON(http.StatusOK, apps)
}

// UpdateStatus moves an application through its state machine.  Setting
// "completed" awards the opportunity's credits to the volunteer.
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Invalid status")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	app, err := h.Ledger.SetStatus(ctx, uid, c.Param("id"), model.ApplicationStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		return mapError(c, h.Log, err, "Failed to update application")
	}
	return c.JSON(http.StatusOK, app)
}
