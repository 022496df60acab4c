package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// statusFor maps an error to its HTTP status by category
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeStore:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeStorage:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes err as JSON and aborts the chain
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: string(apperrors.TypeOf(err))}

	var verr *apperrors.ErrValidationFailed
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	switch {
	case status == http.StatusRequestEntityTooLarge:
		resp.Code = "too_large"
	case status >= http.StatusInternalServerError:
		s.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status == http.StatusInternalServerError {
			resp = errorResponse{Error: "internal server error", Code: "internal"}
		}
	}

	c.AbortWithStatusJSON(status, resp)
}
