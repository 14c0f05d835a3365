package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/service"
)

// dbTimeout bounds every request's database work.
const dbTimeout = 5 * time.Second

// message writes the uniform error body.
func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"message": msg})
}

// requestCtx derives the per-request database context.
func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUser returns the id JWTAuth stored.  Routes using it sit behind
// JWTAuth, so an empty id means the middleware was not applied.
func currentUser(c echo.Context) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", echo.ErrUnauthorized
	}
	return id, nil
}

// mapError turns known sentinels into client errors.  Anything else is
// logged and answered with 500 and fallback as message.
func mapError(c echo.Context, log logrus.FieldLogger, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return message(c, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrOpportunityNotFound):
		return message(c, http.StatusNotFound, "Opportunity not found")
	case errors.Is(err, repository.ErrApplicationNotFound):
		return message(c, http.StatusNotFound, "Application not found")
	case errors.Is(err, repository.ErrRewardNotFound):
		return message(c, http.StatusNotFound, "Reward not found")
	case errors.Is(err, repository.ErrForbidden):
		return message(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, repository.ErrAlreadyApplied):
		return message(c, http.StatusBadRequest, "Already applied for this opportunity")
	case errors.Is(err, service.ErrInvalidStatus):
		return message(c, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, service.ErrInvalidTransition):
		return message(c, http.StatusBadRequest, "Invalid status transition")
	case errors.Is(err, service.ErrInsufficientCredits):
		return message(c, http.StatusBadRequest, "Insufficient credits")
	case errors.Is(err, service.ErrRewardInactive):
		return message(c, http.StatusBadRequest, "Reward is not available")
	case errors.Is(err, service.ErrOpportunityInactive):
		return message(c, http.StatusBadRequest, "Opportunity is not accepting applications")
	case errors.Is(err, repository.ErrDuplicateUser):
		return message(c, http.StatusConflict, "Username or email already exists")
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method, "route": c.Path(),
	}).Error(fallback)
	return message(c, http.StatusInternalServerError, fallback)
}
