package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"todo-api/internal/domain"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidCredentials:
		return http.StatusBadRequest
	case domain.KindUnauthenticated, domain.KindTokenExpired, domain.KindTokenInvalid:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error", "kind", "field"} and aborts the chain.
// Server-side failures are attached to the context for the request logger.
func (h *Handler) writeError(c *gin.Context, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"kind":  "internal",
		})
		return
	}

	status := statusFor(derr.Kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	body := gin.H{
		"error": derr.Message,
		"kind":  derr.Kind,
	}
	if derr.Field != "" {
		body["field"] = derr.Field
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body into req and converts decoding and
// binding-tag failures into field-level validation errors.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := "this field is invalid"
		if fe.Tag() == "required" {
			msg = "this field is required"
		}
		return domain.ValidationError(fe.Field(), msg)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.ValidationError(typeErr.Field, "value has the wrong type")
	}
	if errors.Is(err, io.EOF) {
		return domain.NewError(domain.KindValidation, "request body is required")
	}
	return &domain.Error{Kind: domain.KindValidation, Message: "malformed JSON body", Cause: err}
}

var tagNameOnce sync.Once

// registerValidatorTagNames makes binding errors report JSON field names.
func registerValidatorTagNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
