// Package handler holds the gin handlers of the HTTP API.
package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/interfaces/http/dto"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 with no body
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 for a malformed request
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// HandleError maps err to a status and envelope. Server-side failures are
// logged with the request context; client errors are not.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, body := dto.FromError(err, middleware.GetRequestID(c))
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// BindJSON decodes the body into req. Malformed JSON is ERR_INVALID_JSON;
// binding-tag failures become field errors. It reports whether the handler
// may continue.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.HandleError(c, fieldErrors(verrs))
		return false
	}
	h.BadRequest(c, dto.ErrCodeInvalidJSON, "Invalid JSON body: "+err.Error())
	return false
}

// BindQuery decodes query parameters into req
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.HandleError(c, fieldErrors(verrs))
		return false
	}
	h.BadRequest(c, dto.ErrCodeBadRequest, err.Error())
	return false
}

// PathUUID parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) PathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.HandleError(c, shared.NewValidationError(param, param+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func fieldErrors(verrs validator.ValidationErrors) *shared.ValidationError {
	out := &shared.ValidationError{}
	for _, fe := range verrs {
		field := snakeCase(fe.Field())
		switch fe.Tag() {
		case "required":
			out.Add(field, field+" required")
		case "oneof":
			out.Add(field, field+" must be one of: "+fe.Param())
		case "min", "max":
			out.Add(field, field+" must be "+fe.Tag()+" "+fe.Param())
		default:
			out.Add(field, field+" is invalid")
		}
	}
	return out
}

// snakeCase converts a Go field name to its json spelling: AccountStatus -> account_status
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
