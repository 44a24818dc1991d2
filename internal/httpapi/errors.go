package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/apex/log"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNoEntitiesAvailable:
		return http.StatusConflict
	case apperrors.KindGeneration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Kind = appErr.Kind.String()
		resp.Error = appErr.Message
		if appErr.Cause != nil {
			resp.Error = fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		resp.Error = http.StatusText(status)
		if m, ok := httpErr.Message.(string); ok {
			resp.Error = m
		}
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("uri", c.Request().RequestURI).Error("internal error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	if err := c.JSON(status, resp); err != nil {
		log.WithError(err).Error("failed to write error response")
	}
}

func idParam(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid id %q", raw)
	}
	return uint(id), nil
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request body: %v", err)
	}
	return nil
}
