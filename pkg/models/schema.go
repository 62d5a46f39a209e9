package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateEventEnvelope(msg *EventEnvelope) error {
	if msg == nil {
		return &ValidationError{
			Field:   "envelope",
			Message: "event envelope cannot be nil",
		}
	}

	if msg.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if msg.EventType == "" {
		return &ValidationError{
			Field:   "event_type",
			Message: "event type is required",
		}
	}

	if msg.EntityType == "" {
		return &ValidationError{
			Field:   "entity_type",
			Message: "entity type is required",
		}
	}

	if msg.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	return nil
}
