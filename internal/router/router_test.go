package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/notification-preferences/internal/handler"
	"github.com/iliyamo/notification-preferences/internal/i18n"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/queue"
	"github.com/iliyamo/notification-preferences/internal/repository"
	"github.com/iliyamo/notification-preferences/internal/service"
	"github.com/iliyamo/notification-preferences/internal/utils"
)

// memStore is an in-memory stand-in for the three repositories.
type memStore struct {
	mu    sync.Mutex
	users []model.User
	types []model.NotificationType
	prefs []model.UserNotificationPreference
}

func (m *memStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uint64(len(m.users) + 1)
	m.users = append(m.users, *u)
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == email {
			return x, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.ID == id {
			return x, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memStore) UpdateLocale(_ context.Context, id uint64, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Locale = locale
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *memStore) deactivate(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			m.users[i].IsActive = false
		}
	}
}

type memTypes struct{ *memStore }

func (m memTypes) ListActive(context.Context) ([]model.NotificationType, error) {
	var out []model.NotificationType
	for _, t := range m.types {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTypes) GetActiveByKey(_ context.Context, key string) (model.NotificationType, error) {
	for _, t := range m.types {
		if t.Key == key && t.IsActive {
			return t, nil
		}
	}
	return model.NotificationType{}, repository.ErrNotificationTypeNotFound
}

type memPrefs struct{ *memStore }

func (m memPrefs) ListByUser(_ context.Context, userID uint64) ([]model.UserNotificationPreference, error) {
	var out []model.UserNotificationPreference
	for _, p := range m.prefs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memPrefs) Upsert(_ context.Context, userID, typeID uint64, enabled bool) (model.UserNotificationPreference, error) {
	key := ""
	for _, t := range m.types {
		if t.ID == typeID {
			key = t.Key
		}
	}
	for i, p := range m.prefs {
		if p.UserID == userID && p.NotificationTypeID == typeID {
			m.prefs[i].Enabled = enabled
			return m.prefs[i], nil
		}
	}
	p := model.UserNotificationPreference{
		ID: uint64(len(m.prefs) + 1), UserID: userID, NotificationTypeID: typeID,
		NotificationTypeKey: key, Enabled: enabled,
	}
	m.prefs = append(m.prefs, p)
	return p, nil
}

func newApp(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()
	store := &memStore{types: []model.NotificationType{
		{ID: 1, Key: "weekly_digest", IsActive: true,
			Descriptions: i18n.Text{"en": "Weekly digest", "fr": "Résumé hebdomadaire"}},
		{ID: 2, Key: "account_security", IsActive: true,
			Descriptions: i18n.Text{"en": "Security alerts"}},
		{ID: 3, Key: "legacy_newsletter", IsActive: false,
			Descriptions: i18n.Text{"en": "Legacy"}},
		{ID: 4, Key: "sms_promotions", IsActive: true, IsDeprecated: true,
			Descriptions:     i18n.Text{"en": "SMS offers"},
			DeprecatedReason: i18n.Text{"en": "Retired", "fr": "Retiré"}},
	}}

	log := zerolog.Nop()
	events := queue.NoopPublisher{}
	authSvc := service.NewAuthService(store, utils.NewTokenManager("router-test"), events, log, bcrypt.MinCost, time.Hour)
	catalog := service.NewCatalogService(memTypes{store})
	prefs := service.NewPreferenceService(memTypes{store}, memPrefs{store}, events, log)

	v, err := handler.NewValidator()
	require.NoError(t, err)

	e := New(Options{Log: log, CORSAllowOrigins: []string{"*"}, GzipMinLength: 1000})
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(authSvc, v), authSvc)
	RegisterNotifications(e, handler.NewNotificationHandler(catalog), handler.NewPreferenceHandler(prefs, v), authSvc)
	return e, store
}

func call(e *echo.Echo, method, target, contentType, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, e *echo.Echo, email string) string {
	t.Helper()
	rec := call(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON,
		`{"email":"`+email+`","password":"password123","locale":"fr"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {email}, "password": {"password123"}}
	rec = call(e, http.MethodPost, "/auth/login", echo.MIMEApplicationForm, form.Encode(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func TestFlow_RegisterLoginList(t *testing.T) {
	e, _ := newApp(t)
	token := registerAndLogin(t, e, "ana@example.com")

	rec := call(e, http.MethodGet, "/notifications/?locale=fr", "", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "fr", rec.Header().Get("Content-Language"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.JSONEq(t, `{"notification_types":[
		{"key":"account_security","description":"Security alerts","is_active":true,"is_deprecated":false,"deprecated_reason":null},
		{"key":"sms_promotions","description":"SMS offers","is_active":true,"is_deprecated":true,"deprecated_reason":"Retiré"},
		{"key":"weekly_digest","description":"Résumé hebdomadaire","is_active":true,"is_deprecated":false,"deprecated_reason":null}
	]}`, rec.Body.String())

	// Without the trailing slash as well.
	rec = call(e, http.MethodGet, "/notifications", "", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFlow_UnauthenticatedListing(t *testing.T) {
	e, _ := newApp(t)

	for _, target := range []string{"/notifications/", "/notifications", "/notifications/preferences"} {
		rec := call(e, http.MethodGet, target, "", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate), target)
	}

	rec := call(e, http.MethodGet, "/notifications/", "", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFlow_DuplicateRegistration(t *testing.T) {
	e, _ := newApp(t)
	body := `{"email":"ana@example.com","password":"password123","locale":"en"}`

	first := call(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, body, "")
	second := call(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, body, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestFlow_RegisterMultibytePassword(t *testing.T) {
	e, _ := newApp(t)

	reg := func(email, password string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]string{"email": email, "password": password, "locale": "en"})
		require.NoError(t, err)
		return call(e, http.MethodPost, "/auth/register", echo.MIMEApplicationJSON, string(body), "")
	}

	rec := reg("ana@example.com", strings.Repeat("é", 40))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"field":"password"`)

	// Exactly 72 bytes is accepted and can log in.
	pw := strings.Repeat("é", 36)
	rec = reg("bob@example.com", pw)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {"bob@example.com"}, "password": {pw}}
	rec = call(e, http.MethodPost, "/auth/login", echo.MIMEApplicationForm, form.Encode(), "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestFlow_DeactivatedUserLosesAccess(t *testing.T) {
	e, store := newApp(t)
	token := registerAndLogin(t, e, "ana@example.com")

	rec := call(e, http.MethodGet, "/auth/me", "", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	store.deactivate("ana@example.com")
	rec = call(e, http.MethodGet, "/auth/me", "", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFlow_Preferences(t *testing.T) {
	e, _ := newApp(t)
	token := registerAndLogin(t, e, "ana@example.com")

	rec := call(e, http.MethodPut, "/notifications/preferences/weekly_digest", echo.MIMEApplicationJSON, `{"enabled":false}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(e, http.MethodPut, "/notifications/preferences/legacy_newsletter", echo.MIMEApplicationJSON, `{"enabled":true}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodGet, "/notifications/preferences", "", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"preferences":[{"id":1,"notification_type_key":"weekly_digest","enabled":false}]}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := newApp(t)

	rec := call(e, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = call(e, http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notification_prefs_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	e, _ := newApp(t)

	rec := call(e, http.MethodGet, "/nope?locale=de", "", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "de", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), `"http_error"`)
}
