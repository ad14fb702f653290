package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/middleware"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/service"
)

// CatalogService is the subset of service.CatalogService used here.
type CatalogService interface {
	ListNotificationTypes(ctx context.Context, user model.User, locale string) ([]service.NotificationTypeView, error)
}

// NotificationHandler serves the notification type catalog.
type NotificationHandler struct {
	Catalog CatalogService
}

func NewNotificationHandler(catalog CatalogService) *NotificationHandler {
	return &NotificationHandler{Catalog: catalog}
}

type notificationTypeResp struct {
	Key              string  `json:"key"`
	Description      string  `json:"description"`
	IsActive         bool    `json:"is_active"`
	IsDeprecated     bool    `json:"is_deprecated"`
	DeprecatedReason *string `json:"deprecated_reason"`
}

type notificationListResp struct {
	NotificationTypes []notificationTypeResp `json:"notification_types"`
}

// List returns the active notification types with text in the request
// locale.
func (h *NotificationHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	views, err := h.Catalog.ListNotificationTypes(ctx, u, middleware.RequestLocale(c))
	if err != nil {
		return err
	}

	out := make([]notificationTypeResp, 0, len(views))
	for _, v := range views {
		out = append(out, notificationTypeResp{
			Key:              v.Key,
			Description:      v.Description,
			IsActive:         v.IsActive,
			IsDeprecated:     v.IsDeprecated,
			DeprecatedReason: v.DeprecatedReason,
		})
	}
	return c.JSON(http.StatusOK, notificationListResp{NotificationTypes: out})
}
