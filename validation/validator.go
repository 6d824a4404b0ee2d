package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/souadELmaazouzi/audio-processing-and-ui/errors"
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateUUID validates and parses a UUID string such as a run id.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.MissingField(field)
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.InvalidInput(field, "must be a valid UUID")
	}

	return id, nil
}
