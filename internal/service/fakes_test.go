package service

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/queue"
	"github.com/iliyamo/notification-preferences/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint64]*model.User
	nextID uint64
	err    error // returned by every call when set
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.User{}, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) UpdateLocale(_ context.Context, id uint64, locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Locale = locale
	return nil
}

func (f *fakeUsers) setActive(email string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			u.IsActive = active
		}
	}
}

type fakeTypes struct {
	types []model.NotificationType
	err   error
}

func (f *fakeTypes) ListActive(context.Context) ([]model.NotificationType, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.types, nil
}

func (f *fakeTypes) GetActiveByKey(_ context.Context, key string) (model.NotificationType, error) {
	for _, t := range f.types {
		if t.Key == key && t.IsActive {
			return t, nil
		}
	}
	return model.NotificationType{}, repository.ErrNotificationTypeNotFound
}

type fakePrefs struct {
	rows []model.UserNotificationPreference
}

func (f *fakePrefs) ListByUser(_ context.Context, userID uint64) ([]model.UserNotificationPreference, error) {
	var out []model.UserNotificationPreference
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrefs) Upsert(_ context.Context, userID, typeID uint64, enabled bool) (model.UserNotificationPreference, error) {
	for i, p := range f.rows {
		if p.UserID == userID && p.NotificationTypeID == typeID {
			f.rows[i].Enabled = enabled
			return f.rows[i], nil
		}
	}
	p := model.UserNotificationPreference{
		ID:                 uint64(len(f.rows) + 1),
		UserID:             userID,
		NotificationTypeID: typeID,
		Enabled:            enabled,
	}
	f.rows = append(f.rows, p)
	return p, nil
}

type fakeEvents struct {
	mu         sync.Mutex
	registered []queue.UserRegisteredEvent
	updated    []queue.PreferenceUpdatedEvent
	fail       bool
}

var errBroker = errors.New("broker unavailable")

func (f *fakeEvents) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBroker
	}
	f.registered = append(f.registered, ev)
	return nil
}

func (f *fakeEvents) PublishPreferenceUpdated(_ context.Context, ev queue.PreferenceUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBroker
	}
	f.updated = append(f.updated, ev)
	return nil
}
