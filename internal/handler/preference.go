package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/middleware"
	"github.com/iliyamo/notification-preferences/internal/model"
)

// PreferenceService is the subset of service.PreferenceService used here.
type PreferenceService interface {
	List(ctx context.Context, u model.User) ([]model.UserNotificationPreference, error)
	Set(ctx context.Context, u model.User, key string, enabled bool) (model.UserNotificationPreference, error)
}

// PreferenceHandler lets a user read and change their preferences.
type PreferenceHandler struct {
	Prefs     PreferenceService
	Validator *Validator
}

func NewPreferenceHandler(prefs PreferenceService, v *Validator) *PreferenceHandler {
	return &PreferenceHandler{Prefs: prefs, Validator: v}
}

type setPreferenceReq struct {
	Key     string `json:"-" param:"key" validate:"required,max=64"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

type preferenceResp struct {
	ID                  uint64 `json:"id"`
	NotificationTypeKey string `json:"notification_type_key"`
	Enabled             bool   `json:"enabled"`
}

type preferenceListResp struct {
	Preferences []preferenceResp `json:"preferences"`
}

func toPreferenceResp(p model.UserNotificationPreference) preferenceResp {
	return preferenceResp{ID: p.ID, NotificationTypeKey: p.NotificationTypeKey, Enabled: p.Enabled}
}

// List: GET /notifications/preferences
func (h *PreferenceHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	prefs, err := h.Prefs.List(ctx, u)
	if err != nil {
		return err
	}
	out := make([]preferenceResp, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, toPreferenceResp(p))
	}
	return c.JSON(http.StatusOK, preferenceListResp{Preferences: out})
}

// Set: PUT /notifications/preferences/:key
func (h *PreferenceHandler) Set(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req setPreferenceReq
	if err := bind(c, h.Validator, middleware.RequestLocale(c), &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Prefs.Set(ctx, u, req.Key, *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPreferenceResp(p))
}
