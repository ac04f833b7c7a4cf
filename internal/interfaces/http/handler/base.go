package handler

import (
	"errors"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/logger"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const genericErrorMessage = "An unexpected error occurred"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 invalid input response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInvalidInput, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// HandleError converts an error to the envelope. Domain errors keep their
// code; anything else becomes 500 INTERNAL_ERROR. Server-side failures are
// logged and reported to Sentry, and their messages stay internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := dto.ErrCodeInternal
	message := genericErrorMessage
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		if dto.ExposesMessage(code) {
			message = domainErr.Message
		}
	}

	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Enrich(c.Request.Context(), logger.GetGinLogger(c)).Error("Request failed",
			zap.String("code", code),
			zap.Error(err))
		if hub := sentrygin.GetHubFromContext(c); hub != nil && code != dto.ErrCodeUpstreamUnavailable {
			hub.CaptureException(err)
		}
	}

	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BindJSON binds the request body into req. On failure it writes a 400 with
// per-field details and returns false.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	return h.bindWith(c, c.ShouldBindJSON(req))
}

// BindQuery binds query parameters into req, answering 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	return h.bindWith(c, c.ShouldBindQuery(req))
}

func (h *BaseHandler) bindWith(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			middleware.GetRequestID(c),
			details,
		))
		return false
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}
	h.BadRequest(c, "Invalid request body")
	return false
}

// requireUser returns the authenticated caller, answering 401 when absent
func (h *BaseHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		h.Unauthorized(c)
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid path parameter. An id that cannot exist answers 404
// with "<resource> not found".
func (h *BaseHandler) pathID(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.NotFound(c, resource+" not found")
		return uuid.Nil, false
	}
	return id, true
}
