package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/middleware"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/service"
	"github.com/iliyamo/notification-preferences/internal/utils"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// AuthService is the subset of service.AuthService used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (utils.AccessToken, error)
	UpdateLocale(ctx context.Context, u model.User, locale string) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth      AuthService
	Validator *Validator
}

func NewAuthHandler(auth AuthService, v *Validator) *AuthHandler {
	return &AuthHandler{Auth: auth, Validator: v}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,pwbytes"`
	Locale   string `json:"locale" validate:"required,max=8"`
}

// loginReq is an OAuth2 password-style form; username carries the email.
type loginReq struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type updateMeReq struct {
	Locale string `json:"locale" validate:"required,max=8"`
}

type userResp struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Locale   string `json:"locale"`
	IsActive bool   `json:"is_active"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserResp(u model.User) userResp {
	return userResp{ID: u.ID, Email: u.Email, Locale: u.Locale, IsActive: u.IsActive}
}

// Register: create an active user.  Email and locale are stored as given.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, h.Validator, middleware.RequestLocale(c), &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Locale:   req.Locale,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Login: verify form credentials and return a bearer access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, h.Validator, middleware.RequestLocale(c), &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	tok, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResp{AccessToken: tok.Token, TokenType: "bearer"})
}

// Me: return the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateMe: change the preferred locale of the authenticated user.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updateMeReq
	if err := bind(c, h.Validator, middleware.RequestLocale(c), &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	fresh, err := h.Auth.UpdateLocale(ctx, u, req.Locale)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(fresh))
}

// currentUser reads the user set by middleware.JWTAuth.  A missing user
// means the route was registered without the middleware.
func currentUser(c echo.Context) (model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return model.User{}, apperror.Unauthorized("Not authenticated", nil)
	}
	return u, nil
}
