package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

var knownSystemEventTypes = []SystemEventTypeENUMType{
	SystemEventTypeUserCreated,
	SystemEventTypeLoginSucceeded,
	SystemEventTypeLoginFailed,
	SystemEventTypeResultSubmitted,
}

// KnownSystemEventTypes list every defined system event type
func KnownSystemEventTypes() []SystemEventTypeENUMType {
	return append([]SystemEventTypeENUMType{}, knownSystemEventTypes...)
}

// IsKnownSystemEventType whether the value names a defined system event type
func IsKnownSystemEventType(value string) bool {
	for _, eventType := range knownSystemEventTypes {
		if string(eventType) == value {
			return true
		}
	}
	return false
}

/*
RegisterWithValidator register the custom validation tags of this package

	@param v *validator.Validate - the validator to register against
	@return whether successful
*/
func RegisterWithValidator(v *validator.Validate) error {
	return v.RegisterValidation("system_event_type", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && IsKnownSystemEventType(fl.Field().String())
	})
}
