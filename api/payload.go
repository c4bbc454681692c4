package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/alwitt/reporter/models"
	"github.com/go-playground/validator/v10"
)

// resultPayload submitted result record
//
// Pointer fields distinguish an absent value from a zero value.
type resultPayload struct {
	Category       *string `json:"category" validate:"required,min=1,max=150"`
	Testcases      *int    `json:"testcases" validate:"required"`
	Passed         *int    `json:"passed" validate:"required"`
	Failed         *int    `json:"failed" validate:"required"`
	Skipped        *int    `json:"skipped" validate:"required"`
	PassPercentage *int    `json:"passpercentage" validate:"required"`
	Environment    *string `json:"environment" validate:"required,min=1,max=150"`
	Datetime       *string `json:"datetime" validate:"required"`
	Comments       *string `json:"comments" validate:"required,min=1,max=200"`
}

// resultView a result record as returned to API callers
type resultView struct {
	ResultID       uint               `json:"resultId"`
	Category       string             `json:"category"`
	Testcases      int                `json:"testcases"`
	Passed         int                `json:"passed"`
	Failed         int                `json:"failed"`
	Skipped        int                `json:"skipped"`
	PassPercentage int                `json:"passpercentage"`
	Environment    string             `json:"environment"`
	Datetime       models.ISO8601Time `json:"datetime"`
	Comments       string             `json:"comments"`
}

// loginResponse successful login response
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newResultView(record models.ResultRecord) resultView {
	return resultView{
		ResultID:       record.ID,
		Category:       record.Category,
		Testcases:      record.Testcases,
		Passed:         record.Passed,
		Failed:         record.Failed,
		Skipped:        record.Skipped,
		PassPercentage: record.PassPercentage,
		Environment:    record.Environment,
		Datetime:       models.ISO8601Time{Time: record.Datetime},
		Comments:       record.Comments,
	}
}

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

/*
decodeResultPayload parse and validate a submitted result record

	@param body io.Reader - request body
	@param validate *validator.Validate - payload validator
	@return the result record, or the validation failures
*/
func decodeResultPayload(
	body io.Reader, validate *validator.Validate,
) (models.ResultRecord, []FieldError) {
	var payload resultPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return models.ResultRecord{}, []FieldError{describeDecodeError(err)}
	}

	if err := validate.Struct(&payload); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return models.ResultRecord{}, []FieldError{
				{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"},
			}
		}
		details := make([]FieldError, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, describeFieldError("body", fieldErr))
		}
		return models.ResultRecord{}, details
	}

	timestamp, err := models.ParseISO8601(*payload.Datetime)
	if err != nil {
		return models.ResultRecord{}, []FieldError{invalidDatetime("body", "datetime")}
	}

	return models.ResultRecord{
		Category:       *payload.Category,
		Testcases:      *payload.Testcases,
		Passed:         *payload.Passed,
		Failed:         *payload.Failed,
		Skipped:        *payload.Skipped,
		PassPercentage: *payload.PassPercentage,
		Environment:    *payload.Environment,
		Datetime:       timestamp,
		Comments:       *payload.Comments,
	}, nil
}

func describeDecodeError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return FieldError{
			Loc:  []string{"body", typeErr.Field},
			Msg:  fmt.Sprintf("value is not a valid %s", typeErr.Type.String()),
			Type: "type_error",
		}
	case errors.Is(err, io.EOF):
		return FieldError{Loc: []string{"body"}, Msg: "field required", Type: "value_error.missing"}
	}
	return FieldError{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}
}

func describeFieldError(location string, fieldErr validator.FieldError) FieldError {
	detail := FieldError{Loc: []string{location, fieldErr.Field()}}
	switch fieldErr.Tag() {
	case "required":
		detail.Msg = "field required"
		detail.Type = "value_error.missing"
	case "min":
		detail.Msg = fmt.Sprintf("ensure this value has at least %s characters", fieldErr.Param())
		detail.Type = "value_error.any_str.min_length"
	case "max":
		detail.Msg = fmt.Sprintf("ensure this value has at most %s characters", fieldErr.Param())
		detail.Type = "value_error.any_str.max_length"
	default:
		detail.Msg = fieldErr.Error()
		detail.Type = "value_error"
	}
	return detail
}

func invalidDatetime(location, field string) FieldError {
	return FieldError{
		Loc: []string{location, field}, Msg: "invalid datetime format", Type: "value_error.datetime",
	}
}
