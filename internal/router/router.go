// Package router builds the Echo instance and registers the HTTP routes.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iliyamo/notification-preferences/internal/handler"
	"github.com/iliyamo/notification-preferences/internal/metrics"
	"github.com/iliyamo/notification-preferences/internal/middleware"
)

// Options configures the shared middleware stack.
type Options struct {
	Log              zerolog.Logger
	CORSAllowOrigins []string
	GzipMinLength    int
	ForceHTTPS       bool
}

// New returns an Echo instance with the error handler and the middleware
// every route shares.  Order matters: the locale is resolved before
// logging, and metrics wrap Recover so panics are counted as 500s.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(opts.Log)

	if opts.ForceHTTPS {
		e.Pre(echomw.HTTPSRedirect())
	}
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Locale())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(middleware.Metrics())
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			opts.Log.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			"Accept-Language",
		},
		ExposeHeaders: []string{middleware.HeaderContentLanguage, echo.HeaderXRequestID},
	}))
	e.Use(echomw.GzipWithConfig(echomw.GzipConfig{MinLength: opts.GzipMinLength}))
	return e
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}

// RegisterAuth registers the /auth routes.  Register and login are public;
// /auth/me requires a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth middleware.Authenticator) {
	requireAuth := middleware.JWTAuth(auth)

	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, requireAuth)
	g.PATCH("/me", a.UpdateMe, requireAuth)
}

// RegisterNotifications registers the catalog and preference routes, all of
// which require a bearer token.  The catalog answers with and without the
// trailing slash.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, p *handler.PreferenceHandler, auth middleware.Authenticator) {
	requireAuth := middleware.JWTAuth(auth)

	g := e.Group("/notifications")
	g.GET("", n.List, requireAuth)
	g.GET("/", n.List, requireAuth)
	g.GET("/preferences", p.List, requireAuth)
	g.PUT("/preferences/:key", p.Set, requireAuth)
}
