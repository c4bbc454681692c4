package db

import (
	"context"
	"fmt"
	"time"

	"github.com/alwitt/goutils"
	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CommonListEntryQueryFilter common query filter when listing data entries
type CommonListEntryQueryFilter struct {
	Limit  *int
	Offset *int
}

// SystemEventQueryFilter audit event query filter conditions
type SystemEventQueryFilter struct {
	CommonListEntryQueryFilter
	// EventTypes the specific event types to query for
	EventTypes []models.SystemEventTypeENUMType
	// EventsAfter filter for events after this timestamp
	EventsAfter *time.Time
	// EventsBefore filter for events before this timestamp
	EventsBefore *time.Time
}

// Database the database handle to interacting with the data base
type Database interface {
	// ------------------------------------------------------------------------------------
	// System audit events

	/*
		RecordSystemEvent record a new system event

			@param ctx context.Context - execution context
			@param eventType models.SystemEventTypeENUMType - event type
			@param metadata interface{} - event metadata, validated before storage
			@return the stored event
	*/
	RecordSystemEvent(
		ctx context.Context, eventType models.SystemEventTypeENUMType, metadata interface{},
	) (models.SystemEventAudit, error)

	/*
		ListSystemEvents list captured system events

			@param ctx context.Context - execution context
			@param filters SystemEventQueryFilter - entry listing filter
			@return list of system events
	*/
	ListSystemEvents(
		ctx context.Context, filters SystemEventQueryFilter,
	) ([]models.SystemEventAudit, error)

	// ------------------------------------------------------------------------------------
	// Users

	/*
		DefineNewUser define a new user account

			@param ctx context.Context - execution context
			@param username string - unique user name
			@param passwordHash string - bcrypt hash of the password
			@returns user entry
	*/
	DefineNewUser(ctx context.Context, username, passwordHash string) (models.User, error)

	/*
		GetUserByName fetch a user by name, compared case-insensitively

			@param ctx context.Context - execution context
			@param username string - user name
			@returns user entry
	*/
	GetUserByName(ctx context.Context, username string) (models.User, error)

	// ------------------------------------------------------------------------------------
	// Results

	/*
		RecordResult store a new result record

			@param ctx context.Context - execution context
			@param record models.ResultRecord - the result; its ID is ignored
			@returns the stored record with its assigned ID
	*/
	RecordResult(ctx context.Context, record models.ResultRecord) (models.ResultRecord, error)

	/*
		ListResults list the results matching a category and environment within a time window

			@param ctx context.Context - execution context
			@param filters models.ResultRangeQuery - query conditions
			@return matching results, ordered by ID
	*/
	ListResults(
		ctx context.Context, filters models.ResultRangeQuery,
	) ([]models.ResultRecord, error)
}

// databaseImpl implements Database
type databaseImpl struct {
	goutils.Component
	db        *gorm.DB
	validator *validator.Validate
}

// newDatabase define a new database client
func newDatabase(_ context.Context, sqlClient *gorm.DB) (Database, error) {
	logTags := log.Fields{"module": "db", "component": "db-client"}

	instance := &databaseImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db:        sqlClient,
		validator: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}
