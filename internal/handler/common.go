package handler

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// Validator plugs go-playground/validator into Echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator that reports fields by their JSON name.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error { return cv.v.Struct(i) }

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the JSON body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return &service.ValidationError{Field: "body", Message: "malformed JSON body"}
	}
	return c.Validate(req)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// validationFields maps each failing field to the rule it broke.
func validationFields(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// respondError writes the JSON error response for err.  Storage and
// unknown failures are logged and hidden behind a generic message.
func respondError(c echo.Context, err error) error {
	var (
		ve      *service.ValidationError
		fields  validator.ValidationErrors
		storage *service.StorageError
	)
	switch {
	case errors.As(err, &fields):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validationFields(fields)})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &storage):
		log.WithError(storage.Err).WithField("op", storage.Op).Error("storage failure")
	default:
		log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
