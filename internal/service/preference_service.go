package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/queue"
	"github.com/iliyamo/notification-preferences/internal/repository"
)

// PreferenceService reads and writes a user's notification preferences.
type PreferenceService struct {
	types  NotificationTypeStore
	prefs  PreferenceStore
	events EventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewPreferenceService(types NotificationTypeStore, prefs PreferenceStore, events EventPublisher, log zerolog.Logger) *PreferenceService {
	return &PreferenceService{types: types, prefs: prefs, events: events, log: log, now: time.Now}
}

// List returns the stored preferences of u ordered by notification type key.
func (s *PreferenceService) List(ctx context.Context, u model.User) ([]model.UserNotificationPreference, error) {
	prefs, err := s.prefs.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, apperror.Internal("could not list preferences", err)
	}
	if prefs == nil {
		prefs = []model.UserNotificationPreference{}
	}
	return prefs, nil
}

// Set enables or disables the notification type key for u.  Unknown and
// inactive keys are not found.
func (s *PreferenceService) Set(ctx context.Context, u model.User, key string, enabled bool) (model.UserNotificationPreference, error) {
	t, err := s.types.GetActiveByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationTypeNotFound) {
			return model.UserNotificationPreference{}, apperror.NotFound("Notification type not found", err)
		}
		return model.UserNotificationPreference{}, apperror.Internal("could not load notification type", err)
	}

	p, err := s.prefs.Upsert(ctx, u.ID, t.ID, enabled)
	if err != nil {
		return model.UserNotificationPreference{}, apperror.Internal("could not save preference", err)
	}

	publish(ctx, s.log, queue.PreferenceUpdatedQueue, func(ctx context.Context) error {
		return s.events.PublishPreferenceUpdated(ctx, queue.NewPreferenceUpdated(u.ID, t.Key, enabled, s.now()))
	})
	return p, nil
}
