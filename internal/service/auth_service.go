package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/metrics"
	"github.com/iliyamo/notification-preferences/internal/model"
	"github.com/iliyamo/notification-preferences/internal/queue"
	"github.com/iliyamo/notification-preferences/internal/repository"
	"github.com/iliyamo/notification-preferences/internal/utils"
)

const (
	msgBadCredentials  = "Incorrect email or password"
	msgInvalidToken    = "Could not validate credentials"
)

// publishTimeout bounds the best-effort event publish on the request path.
const publishTimeout = 3 * time.Second

// AuthService implements registration, login and bearer authentication.
type AuthService struct {
	users      UserStore
	tokens     *utils.TokenManager
	events     EventPublisher
	log        zerolog.Logger
	bcryptCost int
	ttl        time.Duration

	// now is the clock used for issuing and validating tokens.
	now func() time.Time
}

func NewAuthService(users UserStore, tokens *utils.TokenManager, events EventPublisher, log zerolog.Logger, bcryptCost int, ttl time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		events:     events,
		log:        log,
		bcryptCost: bcryptCost,
		ttl:        ttl,
		now:        time.Now,
	}
}

// RegisterInput carries already-validated registration fields.
type RegisterInput struct {
	Email    string
	Password string
	Locale   string
}

// Register creates an active user.  Email and locale are stored verbatim.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return model.User{}, apperror.Validation("Request validation failed", apperror.FieldError{
			Field:   "password",
			Tag:     "pwbytes",
			Message: "password must be at most 72 bytes long",
		})
	}
	if err != nil {
		return model.User{}, apperror.Internal("could not hash password", err)
	}

	u := model.User{
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		Locale:       in.Locale,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return model.User{}, apperror.Conflict("Email already registered", err)
		}
		return model.User{}, apperror.Internal("could not create user", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	publish(ctx, s.log, queue.UserRegisteredQueue, func(ctx context.Context) error {
		return s.events.PublishUserRegistered(ctx, queue.NewUserRegistered(u.ID, u.Email, u.Locale, s.now()))
	})
	return u, nil
}

// Login checks credentials and issues an access token.  Unknown email, wrong
// password and an inactive account produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return utils.AccessToken{}, apperror.Unauthorized(msgBadCredentials, err)
		}
		return utils.AccessToken{}, apperror.Internal("could not load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return utils.AccessToken{}, apperror.Unauthorized(msgBadCredentials, nil)
	}
	if !u.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		return utils.AccessToken{}, apperror.Unauthorized(msgBadCredentials, nil)
	}

	tok, err := s.tokens.Issue(u.Email, s.now(), s.ttl)
	if err != nil {
		return utils.AccessToken{}, apperror.Internal("could not issue token", err)
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return tok, nil
}

// Authenticate validates a raw bearer token and re-loads its user.  Every
// rejection is the same 401; the cause is only logged.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.User, error) {
	sub, err := s.tokens.Validate(raw, s.now())
	if err != nil {
		metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		s.log.Debug().Err(err).Msg("token rejected")
		return model.User{}, apperror.Unauthorized(msgInvalidToken, err)
	}

	u, err := s.users.GetByEmail(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.TokenValidationsTotal.WithLabelValues("unknown_user").Inc()
			return model.User{}, apperror.Unauthorized(msgInvalidToken, err)
		}
		return model.User{}, apperror.Internal("could not load user", err)
	}
	if !u.IsActive {
		metrics.TokenValidationsTotal.WithLabelValues("inactive").Inc()
		return model.User{}, apperror.Unauthorized(msgInvalidToken, nil)
	}
	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	return u, nil
}

// UpdateLocale stores a new preferred locale and returns the fresh user.
func (s *AuthService) UpdateLocale(ctx context.Context, u model.User, locale string) (model.User, error) {
	if err := s.users.UpdateLocale(ctx, u.ID, locale); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, apperror.NotFound("User not found", err)
		}
		return model.User{}, apperror.Internal("could not update locale", err)
	}
	fresh, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return model.User{}, apperror.Internal("could not load user", err)
	}
	return fresh, nil
}

// publish runs fn with a bounded context detached from request
// cancellation.  Failures are logged and counted, never returned.
func publish(ctx context.Context, log zerolog.Logger, queueName string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		metrics.EventsPublishFailedTotal.WithLabelValues(queueName).Inc()
		log.Warn().Err(err).Str("queue", queueName).Msg("event publish failed")
	}
}
