package service

import (
	"context"
	"slices"
	"strings"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/model"
)

// NotificationTypeView is a catalog entry rendered for one locale.
type NotificationTypeView struct {
	Key              string
	Description      string
	IsActive         bool
	IsDeprecated     bool
	DeprecatedReason *string
}

// CatalogService lists the notification type catalog.
type CatalogService struct {
	types NotificationTypeStore
}

func NewCatalogService(types NotificationTypeStore) *CatalogService {
	return &CatalogService{types: types}
}

// ListNotificationTypes returns the active notification types ordered by
// key, with text resolved for locale.  The catalog is the same for every
// user; user is the authenticated caller.
func (s *CatalogService) ListNotificationTypes(ctx context.Context, user model.User, locale string) ([]NotificationTypeView, error) {
	types, err := s.types.ListActive(ctx)
	if err != nil {
		return nil, apperror.Internal("could not list notification types", err)
	}

	views := make([]NotificationTypeView, 0, len(types))
	for _, t := range types {
		if !t.IsActive {
			continue
		}
		views = append(views, NotificationTypeView{
			Key:              t.Key,
			Description:      t.Description(locale),
			IsActive:         t.IsActive,
			IsDeprecated:     t.IsDeprecated,
			DeprecatedReason: t.Reason(locale),
		})
	}
	slices.SortFunc(views, func(a, b NotificationTypeView) int {
		return strings.Compare(a.Key, b.Key)
	})
	return views, nil
}
