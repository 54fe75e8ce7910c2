package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/middleware"
	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/repository"
	"github.com/Diyorbek0204/dern-support/internal/service"
)

// requestTimeout bounds the storage work done for one request.
const requestTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// currentCaller builds the service identity from the claims stored by
// middleware.JWTAuth.
func currentCaller(c echo.Context) service.Caller {
	return service.Caller{
		ID:    middleware.UserID(c),
		Email: middleware.Email(c),
		Role:  model.Role(middleware.Role(c)),
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// statusOf maps a handler error to an HTTP status and client message.
// Unknown errors become 500 and report ok=false.
func statusOf(err error) (status int, detail string, ok bool) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		msg, isStr := he.Message.(string)
		if !isStr {
			msg = http.StatusText(he.Code)
		}
		return he.Code, msg, true
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error(), true
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, err.Error(), true
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusBadRequest, "Email is already registered", true
	case errors.Is(err, repository.ErrConflict):
		return http.StatusBadRequest, "Request status changed concurrently, reload and retry", true
	}
	return http.StatusInternalServerError, "Server error", false
}

// ErrorHandler renders every error returned by a handler or by echo itself
// as {"detail": "..."}. Unexpected errors are logged.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, detail, ok := statusOf(err)
		if !ok {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"err", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"detail": detail})
		}
		if err != nil {
			logger.Error("write error response", "err", err)
		}
	}
}
