package middleware

// identity.go holds helpers for reading the authenticated user stored in the
// Echo context by JWTAuth.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/model"
)

const userKey = "user"

func setCurrentUser(c echo.Context, u model.User) {
	c.Set(userKey, u)
}

// CurrentUser returns the user authenticated for this request.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}

// userID returns the id of the authenticated user for logging, or "guest"
// when the request is anonymous.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}
