package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/apperror"
	"github.com/iliyamo/notification-preferences/internal/model"
)

// Authenticator turns a raw bearer token into the active user it names.
// service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.User, error)
}

// JWTAuth returns an Echo middleware that requires a valid Bearer access
// token.  The token is validated and its user re-loaded on every request, so
// deactivating an account takes effect immediately.  On success the user is
// available to handlers via CurrentUser.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperror.Unauthorized("Not authenticated", nil)
			}

			u, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				return err
			}
			setCurrentUser(c, u)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header.  The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
