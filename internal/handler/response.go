package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/service"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       interface{}         `json:"data,omitempty"`
	Error      string              `json:"error,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, message string, data interface{}, p service.Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

// NewErrorHandler renders every error that escapes a handler, including
// echo's own routing errors and recovered panics, as an Envelope. Detail is
// only exposed when includeDetail is set.
func NewErrorHandler(logger *zap.Logger, includeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		fields := []zap.Field{
			zap.Int("status", httpErr.StatusCode),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		}
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		body := Envelope{Success: false, Message: httpErr.Message}
		if includeDetail && httpErr.Detail != httpErr.Message {
			body.Error = httpErr.Detail
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		detail := ""
		if he.Internal != nil {
			detail = he.Internal.Error()
		}
		return apperrors.NewHTTPError(he.Code, message, detail)
	}
	return apperrors.MapErrorToHTTP(err)
}
