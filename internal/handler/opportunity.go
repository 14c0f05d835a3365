package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/repository"
)

// Cached listing invalidated on every opportunity write.
const routeOpportunities = "/api/opportunities"

// OpportunityHandler serves the public listing and police management of
// opportunities.
type OpportunityHandler struct {
	Opps  *repository.OpportunityRepo
	Apps  *repository.ApplicationRepo
	Cache *middleware.ResponseCache
	Log   logrus.FieldLogger
}

func NewOpportunityHandler(opps *repository.OpportunityRepo, apps *repository.ApplicationRepo, cache *middleware.ResponseCache, log logrus.FieldLogger) *OpportunityHandler {
	return &OpportunityHandler{Opps: opps, Apps: apps, Cache: cache, Log: log}
}

type opportunityReq struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Description      string   `json:"description" validate:"required"`
	Category         string   `json:"category" validate:"required"`
	Location         string   `json:"location" validate:"required,max=200"`
	Date             flexTime `json:"date" validate:"required"`
	Duration         flexInt  `json:"duration" validate:"min=1"`
	VolunteersNeeded flexInt  `json:"volunteersNeeded" validate:"min=1"`
	CreditsReward    flexInt  `json:"creditsReward" validate:"min=1"`
}

type opportunityPatchReq struct {
	Title            *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,min=1"`
	Category         *string   `json:"category"`
	Location         *string   `json:"location" validate:"omitempty,min=1,max=200"`
	Date             *flexTime `json:"date"`
	Duration         *flexInt  `json:"duration" validate:"omitempty,min=1"`
	VolunteersNeeded *flexInt  `json:"volunteersNeeded" validate:"omitempty,min=1"`
	CreditsReward    *flexInt  `json:"creditsReward" validate:"omitempty,min=1"`
	IsActive         *bool     `json:"isActive"`
}

func (r opportunityPatchReq) patch() model.OpportunityPatch {
	p := model.OpportunityPatch{
		Title:       trimmed(r.Title),
		Description: trimmed(r.Description),
		Location:    trimmed(r.Location),
		IsActive:    r.IsActive,
	}
	if r.Category != nil {
		cat := model.Category(*r.Category)
		p.Category = &cat
	}
	if r.Date != nil {
		d := r.Date.Time
		p.Date = &d
	}
	p.Duration = intPtr(r.Duration)
	p.VolunteersNeeded = intPtr(r.VolunteersNeeded)
	p.CreditsReward = intPtr(r.CreditsReward)
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func intPtr(f *flexInt) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// List returns active opportunities, newest first.
func (h *OpportunityHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	opps, err := h.Opps.ListActive(ctx)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch opportunities")
	}
	return c.JSON(http.StatusOK, opps)
}

// Create posts a new opportunity owned by the calling police user.
func (h *OpportunityHandler) Create(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req opportunityReq
	if err := bindAndValidate(c, &req); err != nil || !model.IsValidCategory(req.Category) {
		return message(c, http.StatusBadRequest, "Invalid opportunity data")
	}

	o := &model.Opportunity{
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Category:         model.Category(req.Category),
		Location:         strings.TrimSpace(req.Location),
		Date:             req.Date.Time,
		Duration:         int(req.Duration),
		VolunteersNeeded: int(req.VolunteersNeeded),
		CreditsReward:    int(req.CreditsReward),
		CreatedByID:      uid,
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Opps.Create(ctx, o); err != nil {
		return mapError(c, h.Log, err, "Failed to create opportunity")
	}
	h.Cache.Invalidate(ctx, routeOpportunities)
	h.Log.WithFields(logrus.Fields{"opportunity_id": o.ID, "created_by": uid}).Info("opportunity created")
	return c.JSON(http.StatusCreated, o)
}

// Mine lists every opportunity the caller created, active or not.
func (h *OpportunityHandler) Mine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	opps, err := h.Opps.ListByCreator(ctx, uid)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch opportunities")
	}
	return c.JSON(http.StatusOK, opps)
}

// Update applies a partial update.  Only the creator may edit.
func (h *OpportunityHandler) Update(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req opportunityPatchReq
	if err := bindAndValidate(c, &req); err != nil {
		return message(c, http.StatusBadRequest, "Invalid opportunity data")
	}
	if req.Category != nil && !model.IsValidCategory(*req.Category) {
		return message(c, http.StatusBadRequest, "Invalid opportunity data")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.owned(ctx, c.Param("id"), uid); err != nil {
		return mapError(c, h.Log, err, "Failed to update opportunity")
	}
	o, err := h.Opps.Update(ctx, c.Param("id"), req.patch())
	if err != nil {
		return mapError(c, h.Log, err, "Failed to update opportunity")
	}
	h.Cache.Invalidate(ctx, routeOpportunities)
	return c.JSON(http.StatusOK, o)
}

// Applications lists the applications on one of the caller's opportunities,
// newest first.
func (h *OpportunityHandler) Applications(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.owned(ctx, c.Param("id"), uid); err != nil {
		return mapError(c, h.Log, err, "Failed to fetch applications")
	}
	apps, err := h.Apps.ListByOpportunity(ctx, c.Param("id"))
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch applications")
	}
	return c.JSON(http.StatusOK, apps)
}

func (h *OpportunityHandler) owned(ctx context.Context, id, uid string) error {
	o, err := h.Opps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.CreatedByID != uid {
		return repository.ErrForbidden
	}
	return nil
}
