package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/notification-preferences/internal/apperror"
)

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

// NewHTTPErrorHandler maps handler errors to JSON responses.  Application
// errors keep their message and details; framework errors become
// "http_error"; everything else is a generic 500 whose cause is only
// logged.  401 responses carry a Bearer challenge.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorBody(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request failed")
		}
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

func errorBody(err error) (int, errorResponse) {
	if ae, ok := apperror.As(err); ok {
		status := ae.Status()
		if status >= http.StatusInternalServerError {
			return status, errorResponse{Error: string(apperror.KindInternal), Message: "Internal server error"}
		}
		return status, errorResponse{Error: string(ae.Kind), Message: ae.Message, Details: ae.Details}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, errorResponse{Error: string(apperror.KindInternal), Message: "Internal server error"}
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, errorResponse{Error: "http_error", Message: msg}
	}

	return http.StatusInternalServerError, errorResponse{Error: string(apperror.KindInternal), Message: "Internal server error"}
}
