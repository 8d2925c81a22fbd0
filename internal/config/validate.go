package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, key := range []string{"koanf", "yaml"} {
				name, _, _ := strings.Cut(f.Tag.Get(key), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return ""
		})
		_ = validate.RegisterValidation("loglevel", validLogLevel)
	})
	return validate
}

// Validate checks the configuration and reports every failing field in one
// ErrInvalidConfig error.
func (c *Config) Validate() error {
	return validateStruct(c)
}

func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Wrap(errors.ErrorTypeConfig, err, "validation failed")
	}

	messages := make([]string, 0, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.SplitN(fe.Namespace(), ".", 2)
		path := fe.Namespace()
		if len(field) == 2 {
			path = field[1]
		}
		fields = append(fields, path)
		messages = append(messages, fieldMessage(path, fe))
	}

	return errors.ErrInvalidConfig(fields[0], strings.Join(messages, "; ")).
		WithDetails(map[string]any{"fields": fields})
}

// validLogLevel accepts the level names the logger understands, ignoring case
// and surrounding space like logging.ParseLevel does.
func validLogLevel(fl validator.FieldLevel) bool {
	level := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return slices.Contains(logging.ValidLevels(), level)
}

func fieldMessage(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", path, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "loglevel":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, strings.Join(logging.ValidLevels(), " "), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
