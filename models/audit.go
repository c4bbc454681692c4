package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// SystemEventTypeENUMType system event type ENUM value type
type SystemEventTypeENUMType string

const (
	// SystemEventTypeUserCreated new user account provisioned
	SystemEventTypeUserCreated SystemEventTypeENUMType = "USER_CREATED"

	// SystemEventTypeLoginSucceeded user presented valid credentials
	SystemEventTypeLoginSucceeded SystemEventTypeENUMType = "LOGIN_SUCCEEDED"

	// SystemEventTypeLoginFailed login attempt with unknown user or wrong password
	SystemEventTypeLoginFailed SystemEventTypeENUMType = "LOGIN_FAILED"

	// SystemEventTypeResultSubmitted new result record stored
	SystemEventTypeResultSubmitted SystemEventTypeENUMType = "RESULT_SUBMITTED"
)

// SystemEventAudit recording of events occurring at the system level
type SystemEventAudit struct {
	// ID audit entry ID
	ID string `json:"id" validate:"required"`
	// EventType system event type
	EventType SystemEventTypeENUMType `json:"type" validate:"required,system_event_type"`
	// Metadata a metadata relating to the event
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
}

// ParseMetadata parse the metadata based on the event type
func (a SystemEventAudit) ParseMetadata(validator *validator.Validate) (interface{}, error) {
	switch a.EventType {
	// User related system audit events
	case SystemEventTypeUserCreated:
		fallthrough
	case SystemEventTypeLoginSucceeded:
		fallthrough
	case SystemEventTypeLoginFailed:
		var parsed SystemEventUserRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("system event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	// Result related system audit events
	case SystemEventTypeResultSubmitted:
		var parsed SystemEventResultRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("system event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)
	}
	return nil, nil
}

// SystemEventUserRelated system event metadata related to a user account
type SystemEventUserRelated struct {
	// Username the user name presented or created
	Username string `json:"username" validate:"required"`
}

// SystemEventResultRelated system event metadata related to a result record
type SystemEventResultRelated struct {
	// ResultID the stored result ID
	ResultID uint `json:"result_id" validate:"required"`
	// Category the result category
	Category string `json:"category" validate:"required"`
	// Environment the result environment
	Environment string `json:"environment" validate:"required"`
	// SubmittedBy the user who submitted the result
	SubmittedBy string `json:"submitted_by" validate:"required"`
}
