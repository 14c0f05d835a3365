package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/config"
	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/model"
	"github.com/iliyamo/volunteer-credits/internal/repository"
	"github.com/iliyamo/volunteer-credits/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	UserType    string `json:"userType" validate:"required,oneof=police citizen"`
	BadgeNumber string `json:"badgeNumber" validate:"required_if=UserType police,max=50"`
}
type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return message(c, http.StatusBadRequest, "Invalid registration data")
	}
	in := repository.NewUser{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		UserType: model.UserType(req.UserType),
	}
	if badge := strings.TrimSpace(req.BadgeNumber); badge != "" && in.UserType == model.UserTypePolice {
		in.BadgeNumber = &badge
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, in, h.Cfg.BcryptCost)
	if err != nil {
		if err == utils.ErrPasswordTooLong {
			return message(c, http.StatusBadRequest, "Invalid registration data")
		}
		return mapError(c, h.Log, err, "Registration failed")
	}
	h.Log.WithFields(logrus.Fields{"user_id": u.ID, "user_type": u.UserType}).Info("user registered")
	return h.issue(c, http.StatusCreated, u)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return message(c, http.StatusBadRequest, "Username and password are required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return message(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return mapError(c, h.Log, err, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return message(c, http.StatusUnauthorized, "Invalid credentials")
	}
	return h.issue(c, http.StatusOK, u)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return message(c, http.StatusBadRequest, "refreshToken is required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := requestCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if err == repository.ErrInvalidRefresh {
			return message(c, http.StatusUnauthorized, "Unauthorized")
		}
		return mapError(c, h.Log, err, "Refresh failed")
	}
	// Losing the race to a concurrent refresh of the same token is a 401.
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		if err == repository.ErrInvalidRefresh {
			return message(c, http.StatusUnauthorized, "Unauthorized")
		}
		return mapError(c, h.Log, err, "Refresh failed")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return message(c, http.StatusUnauthorized, "Unauthorized")
		}
		return mapError(c, h.Log, err, "Refresh failed")
	}
	return h.issue(c, http.StatusOK, u)
}

// Logout revokes the refresh token in the body, or every refresh token of
// the bearer when the body has none.  The session cookie is always cleared.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestCtx(c)
	defer cancel()

	switch {
	case raw != "":
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			if err == repository.ErrInvalidRefresh {
				return message(c, http.StatusUnauthorized, "Unauthorized")
			}
			return mapError(c, h.Log, err, "Logout failed")
		}
	default:
		claims, ok := h.sessionClaims(c)
		if !ok {
			return message(c, http.StatusUnauthorized, "Unauthorized")
		}
		if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID); err != nil {
			return mapError(c, h.Log, err, "Logout failed")
		}
	}
	c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current user including the credit balance.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return message(c, http.StatusUnauthorized, "Unauthorized")
		}
		return mapError(c, h.Log, err, "Failed to fetch user")
	}
	return c.JSON(http.StatusOK, u)
}

// issue signs a token pair for u, stores the refresh hash and sets the
// session cookie.
func (h *AuthHandler) issue(c echo.Context, status int, u *model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.UserType), h.Cfg.AccessTTLMin)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to issue token")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to issue token")
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return mapError(c, h.Log, err, "Failed to issue token")
	}
	c.SetCookie(h.sessionCookie(access.Token, access.Exp))
	return c.JSON(status, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

func (h *AuthHandler) sessionCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionClaims reads the optional access token on routes outside JWTAuth.
func (h *AuthHandler) sessionClaims(c echo.Context) (utils.Claims, bool) {
	raw := ""
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	} else if ck, err := c.Cookie(middleware.SessionCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		return utils.Claims{}, false
	}
	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		return utils.Claims{}, false
	}
	return claims, true
}
