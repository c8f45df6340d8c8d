package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps a domain error to its HTTP status. An empty message
// renders err.Error() of the sentinel.
type errorStatus struct {
	err  error
	code int
	msg  string
}

// First match wins.
var errorStatuses = []errorStatus{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ""},
	{domain.ErrInvalidToken, http.StatusUnauthorized, ""},
	{domain.ErrForbidden, http.StatusForbidden, ""},
	{domain.ErrUserNotFound, http.StatusNotFound, ""},
	{domain.ErrRegistrationNotFound, http.StatusNotFound, ""},
	{domain.ErrUnknownDirectory, http.StatusNotFound, ""},
	{domain.ErrUserExists, http.StatusConflict, "a user with this email already exists"},
	{domain.ErrUsernameTaken, http.StatusConflict, ""},
	{domain.ErrRegistrationReviewed, http.StatusConflict, ""},
	{domain.ErrAnnualUpdateExists, http.StatusConflict, ""},
	{domain.ErrTeamExists, http.StatusConflict, ""},
	{domain.ErrSyncInProgress, http.StatusConflict, ""},
	{domain.ErrInvalidDecision, http.StatusBadRequest, ""},
	{domain.ErrDirectoryUnavailable, http.StatusBadGateway, ""},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Echo errors
// keep their status, known domain errors get a fixed one and anything else
// is logged and hidden behind a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, s := range errorStatuses {
		if !errors.Is(err, s.err) {
			continue
		}
		if s.code >= http.StatusInternalServerError {
			log.Warn().Err(err).Str("path", c.Path()).Msg("upstream failure")
		}
		if s.msg == "" {
			return s.code, s.err.Error()
		}
		return s.code, s.msg
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
