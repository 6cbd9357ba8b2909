// Package apperr holds the error kinds shared by every module and their
// mapping to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrConflict           = errors.New("conflict")
)

// GenericMessage is shown to clients for store failures.
const GenericMessage = "could not process"

// ValidationError is a user input problem detected before touching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// FromBinding turns a gin binding failure into a ValidationError naming the
// first offending field.
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return Invalid(field, field+" is required")
		default:
			return Invalid(field, fmt.Sprintf("%s is not a valid value (%s)", field, fe.Tag()))
		}
	}
	return Invalid("", "malformed request body")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as JSON. Unexpected errors are logged and hidden
// behind GenericMessage.
func Respond(c *gin.Context, log *logrus.Logger, module, funcName string, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			logging.LogError(log, module, funcName, c.Request.Method+" "+c.FullPath(), nil, err)
		}
		c.AbortWithStatusJSON(status, gin.H{"error": GenericMessage})
		return
	}

	body := gin.H{"error": err.Error()}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body["error"] = ve.Message
		if ve.Field != "" {
			body["field"] = ve.Field
		}
	}
	c.AbortWithStatusJSON(status, body)
}
