package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crillab/featsat/explain"
	"github.com/crillab/featsat/mwp"
)

// An apiError is an error along with the HTTP status and code it maps to.
type apiError struct {
	status int
	code   string
	err    error
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

var (
	errNoFile       = errors.New("No file part")
	errNoFilename   = errors.New("No selected file")
	errUntranslated = errors.New("could not translate statement")
)

func badRequest(code string, err error) error {
	return &apiError{status: http.StatusBadRequest, code: code, err: err}
}

// statusOf returns the status and code associated with err.
func statusOf(err error) (int, string) {
	var apiErr *apiError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.As(err, &apiErr):
		return apiErr.status, apiErr.code
	case errors.Is(err, mwp.ErrIterationLimit):
		return http.StatusUnprocessableEntity, "iteration_limit"
	case errors.Is(err, mwp.ErrNoProduct):
		return http.StatusUnprocessableEntity, "no_product"
	case errors.Is(err, explain.ErrSatisfiable):
		return http.StatusUnprocessableEntity, "satisfiable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return 499, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes the JSON error response associated with err.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusOf(err)
	logger := s.requestLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "code", code, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"code":       code,
		"request_id": c.GetString(requestIDKey),
	})
}
