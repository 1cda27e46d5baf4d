package services

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Update payloads arrive as decoded JSON objects, so numbers are float64 and
// null is nil.

func requiredString(fields map[string]interface{}, key string) (string, error) {
	s, ok := fields[key].(string)
	if !ok {
		return "", validationf(fmt.Sprintf("%s must be a string", key))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationf(fmt.Sprintf("%s must not be empty", key))
	}
	return s, nil
}

func optionalString(fields map[string]interface{}, key string) (*string, error) {
	switch v := fields[key].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, validationf(fmt.Sprintf("%s must be a string or null", key))
	}
}

func optionalFloat(fields map[string]interface{}, key string, min, max float64) (*float64, error) {
	switch v := fields[key].(type) {
	case nil:
		return nil, nil
	case float64:
		if v < min || v > max {
			return nil, validationf(fmt.Sprintf("%s must be between %g and %g", key, min, max))
		}
		return &v, nil
	default:
		return nil, validationf(fmt.Sprintf("%s must be a number or null", key))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
