package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"subscription-tracker/internal/dto"
	"subscription-tracker/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names rather than Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &service.ValidationError{Field: fe.Field(), Message: describe(fe)}
		}
		return err
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

// ErrorHandler renders service errors as {"error", "field"} bodies with the
// matching status code.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := mapError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", "error", err)
		}
	}
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		httpErr    *echo.HTTPError
		validation *service.ValidationError
		notFound   *service.NotFoundError
		forbidden  *service.AuthorizationError
		partial    *service.PartialFailure
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, dto.ErrorResponse{Error: validation.Error(), Field: validation.Field}
	case errors.As(err, &notFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: notFound.Error()}
	case errors.As(err, &forbidden):
		return http.StatusForbidden, dto.ErrorResponse{Error: forbidden.Error()}
	case errors.Is(err, service.ErrAlreadyInCart), errors.Is(err, service.ErrAlreadySubscribed):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()}
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()}
	case errors.As(err, &partial):
		return http.StatusInternalServerError, dto.ErrorResponse{Error: partial.Step + " failed"}
	case errors.As(err, &httpErr):
		return httpErr.Code, dto.ErrorResponse{Error: fmt.Sprint(httpErr.Message)}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
}
