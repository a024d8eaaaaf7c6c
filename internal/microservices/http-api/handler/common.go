package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, log *slog.Logger, err error) {
	middleware.WriteError(c, log, err)
}

// bindJSON decodes the body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, log *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, log, translateBindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, log *slog.Logger, q any) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		respondError(c, log, translateBindError(err))
		return false
	}
	return true
}

// pathID parses an integer path parameter. Anything that is not a positive
// integer cannot name an object, so it is a 404.
func pathID(c *gin.Context, log *slog.Logger, param, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, log, apperr.NotFound(resource))
		return 0, false
	}
	return id, true
}

func pageOf(q dto.PageQuery) (int, int) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = service.DefaultPageSize
	}
	return page, size
}

// translateBindError turns gin binding failures into field-level
// validation errors keyed by JSON names.
func translateBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		msg := "invalid input"
		if len(details) == 1 {
			msg = details[0].Field + ": " + details[0].Message
		}
		return apperr.Validation(msg, details...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.FieldInvalid(field, fmt.Sprintf("expected %s", typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Validation("malformed JSON body")
	}
	if errors.Is(err, io.EOF) {
		return apperr.Validation("request body is required")
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperr.Validation(fmt.Sprintf("invalid number %q", numErr.Num))
	}
	return apperr.Validation(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this value is at least %s", fe.Param())
	case "email":
		return "enter a valid email address"
	case "slug":
		return "enter a valid slug consisting of letters, numbers, underscores or hyphens"
	case "username":
		return `enter a valid username; "me" is reserved`
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
