package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/ordersystem/apperrors"
)

type ErrorResponse struct {
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// RespondError writes the standard error body with code.
func RespondError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  code,
		Error:   http.StatusText(code),
		Message: err.Error(),
		Path:    c.Request.URL.Path,
	})
}

// RespondAppError maps a classified service error onto its HTTP status.
// Unclassified errors become 500 and are logged.
func RespondAppError(c *gin.Context, err error) {
	code := StatusForError(err)
	if code == http.StatusInternalServerError {
		ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("unhandled error: %v", err)
	}
	RespondError(c, code, err)
}

func StatusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidOrder, apperrors.KindInvalidCoupon, apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondValidationError reports a malformed request body. Binding failures
// from the validator are broken down per field.
func RespondValidationError(c *gin.Context, err error) {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = describeFieldError(fe)
		}
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		fields[fieldErr.Field] = fieldErr.Message
	}
	if len(fields) == 0 {
		fields["body"] = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Status:      http.StatusBadRequest,
		Error:       "Validation Error",
		Message:     "Validation failed for request parameters",
		Path:        c.Request.URL.Path,
		FieldErrors: fields,
	})
}

// FieldError flags a single request field that could not be decoded.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " element(s)"
	case "dive":
		return "contains an invalid element"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
