package models_test

import (
	"testing"

	"github.com/alwitt/reporter/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestSystemEventTypeValidation(t *testing.T) {
	assert := assert.New(t)

	v := validator.New()
	assert.Nil(models.RegisterWithValidator(v))

	valid := models.SystemEventAudit{ID: "01J0000000000000000000000", EventType: models.SystemEventTypeLoginFailed}
	assert.Nil(v.Struct(&valid))

	invalid := models.SystemEventAudit{ID: "01J0000000000000000000000", EventType: "DROP_TABLES"}
	assert.Error(v.Struct(&invalid))

	assert.Len(models.KnownSystemEventTypes(), 4)
	for _, eventType := range models.KnownSystemEventTypes() {
		assert.True(models.IsKnownSystemEventType(string(eventType)))
	}
	assert.False(models.IsKnownSystemEventType("user_created"))
}

func TestSystemEventParseMetadata(t *testing.T) {
	assert := assert.New(t)

	v := validator.New()
	assert.Nil(models.RegisterWithValidator(v))

	// Case 0: user related
	{
		event := models.SystemEventAudit{
			EventType: models.SystemEventTypeLoginSucceeded,
			Metadata:  datatypes.JSON(`{"username":"alice"}`),
		}
		parsed, err := event.ParseMetadata(v)
		assert.Nil(err)
		assert.Equal(models.SystemEventUserRelated{Username: "alice"}, parsed)
	}

	// Case 1: result related
	{
		event := models.SystemEventAudit{
			EventType: models.SystemEventTypeResultSubmitted,
			Metadata: datatypes.JSON(
				`{"result_id":7,"category":"smoke","environment":"prod","submitted_by":"alice"}`,
			),
		}
		parsed, err := event.ParseMetadata(v)
		assert.Nil(err)
		assert.Equal(
			models.SystemEventResultRelated{
				ResultID: 7, Category: "smoke", Environment: "prod", SubmittedBy: "alice",
			},
			parsed,
		)
	}

	// Case 2: metadata fails validation
	{
		event := models.SystemEventAudit{
			EventType: models.SystemEventTypeResultSubmitted,
			Metadata:  datatypes.JSON(`{"category":"smoke"}`),
		}
		_, err := event.ParseMetadata(v)
		assert.Error(err)
	}

	// Case 3: broken metadata
	{
		event := models.SystemEventAudit{
			EventType: models.SystemEventTypeLoginFailed,
			Metadata:  datatypes.JSON(`{`),
		}
		_, err := event.ParseMetadata(v)
		assert.Error(err)
	}
}
