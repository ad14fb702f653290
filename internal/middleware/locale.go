package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notification-preferences/internal/i18n"
)

// HeaderContentLanguage is set on every response to the resolved locale.
const HeaderContentLanguage = "Content-Language"

// Locale resolves the request locale (query override, Accept-Language, then
// the default), stores it in the request context and echoes it back in
// Content-Language.  The header is written before the handler runs so error
// responses carry it too.
func Locale() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			loc := i18n.ResolveLocale(c.QueryParams(), req.Header)
			c.SetRequest(req.WithContext(i18n.WithLocale(req.Context(), loc)))
			c.Response().Header().Set(HeaderContentLanguage, loc)
			return next(c)
		}
	}
}

// RequestLocale returns the locale resolved for this request.
func RequestLocale(c echo.Context) string {
	return i18n.FromContext(c.Request().Context())
}
