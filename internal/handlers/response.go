package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/freshtrack-backend/internal/errs"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps the core error taxonomy onto stable HTTP statuses.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrNoActiveSession):
		status, code = http.StatusNotFound, "no_active_session"
	case errors.Is(err, errs.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, errs.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, errs.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
