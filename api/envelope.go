package api

import (
	"fmt"
	"net/http"
)

// Envelope result values
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Envelope standard JSON API response body
type Envelope struct {
	// Msg human readable outcome
	Msg string `json:"msg"`
	// Data response payload entries
	Data interface{} `json:"data"`
	// Result "success" or "failed"
	Result string `json:"result"`
}

// FieldError one request validation failure
type FieldError struct {
	// Loc where the failing value is: ["body"|"query"|"form", <field>]
	Loc []string `json:"loc"`
	// Msg description of the failure
	Msg string `json:"msg"`
	// Type failure classification
	Type string `json:"type"`
}

func successEnvelope(msg string, data interface{}) Envelope {
	if data == nil {
		data = []interface{}{}
	}
	return Envelope{Msg: msg, Data: data, Result: ResultSuccess}
}

func failedEnvelope(msg string) Envelope {
	return Envelope{Msg: msg, Data: []interface{}{}, Result: ResultFailed}
}

// apiError a handler failure with a defined HTTP response
type apiError struct {
	status  int
	msg     string
	details []FieldError
	// challenge add the `WWW-Authenticate: Bearer` header
	challenge bool
	cause     error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%d %s [%s]", e.status, e.msg, e.cause.Error())
	}
	return fmt.Sprintf("%d %s", e.status, e.msg)
}

func (e *apiError) Unwrap() error {
	return e.cause
}

func (e *apiError) envelope() Envelope {
	if len(e.details) > 0 {
		return Envelope{Msg: e.msg, Data: e.details, Result: ResultFailed}
	}
	return failedEnvelope(e.msg)
}

// Response messages
const (
	msgValidationFailed    = "request validation failed"
	msgBadCredentials      = "Incorrect username or password"
	msgInvalidToken        = "Could not validate credentials"
	msgResultEntered       = "result entered successfully"
	msgResultsRetrieved    = "report data retrieved successfully"
	msgPersistenceDown     = "persistence unavailable"
	msgInternalServerError = "internal server error"
	msgHealthy             = "ok"
)

func errValidation(details ...FieldError) *apiError {
	return &apiError{
		status:  http.StatusUnprocessableEntity,
		msg:     msgValidationFailed,
		details: details,
	}
}

func errBadCredentials(cause error) *apiError {
	return &apiError{
		status: http.StatusUnauthorized, msg: msgBadCredentials, challenge: true, cause: cause,
	}
}

func errInvalidToken(cause error) *apiError {
	return &apiError{
		status: http.StatusUnauthorized, msg: msgInvalidToken, challenge: true, cause: cause,
	}
}

func missingField(location, field string) FieldError {
	return FieldError{Loc: []string{location, field}, Msg: "field required", Type: "value_error.missing"}
}
