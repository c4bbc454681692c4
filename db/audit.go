// Package db - persistence layer
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

/*
RecordSystemEvent record a new system event

	@param ctx context.Context - execution context
	@param eventType models.SystemEventTypeENUMType - event type
	@param metadata interface{} - event metadata, validated before storage
	@return the stored event
*/
func (d *databaseImpl) RecordSystemEvent(
	ctx context.Context, eventType models.SystemEventTypeENUMType, metadata interface{},
) (models.SystemEventAudit, error) {
	event := models.SystemEventAudit{ID: ulid.Make().String(), EventType: eventType}

	if metadata != nil {
		if err := d.validator.Struct(metadata); err != nil {
			return models.SystemEventAudit{}, fmt.Errorf(
				"new system event '%s' metadata entry is not valid [%w]", eventType, err,
			)
		}

		metadataStr, err := json.Marshal(metadata)
		if err != nil {
			return models.SystemEventAudit{}, fmt.Errorf(
				"new system event '%s' metadata encode failed [%w]", eventType, err,
			)
		}
		event.Metadata = datatypes.JSON(metadataStr)
	}

	if err := d.validator.Struct(&event); err != nil {
		return models.SystemEventAudit{}, fmt.Errorf(
			"new system event '%s' entry is not valid [%w]", eventType, err,
		)
	}

	newEntry := SystemEventAuditDBEntry{
		ID:        event.ID,
		EventType: string(event.EventType),
		Metadata:  event.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.SystemEventAudit{}, fmt.Errorf(
			"new system event '%s' insert failed [%w]", eventType, translateError(tmp.Error),
		)
	}

	log.WithFields(d.GetLogTagsForContext(ctx)).
		WithField("event-id", newEntry.ID).
		WithField("event-type", eventType).
		Debug("Recorded system event")

	return newEntry.toModel(), nil
}

/*
ListSystemEvents list captured system events

	@param ctx context.Context - execution context
	@param filters SystemEventQueryFilter - entry listing filter
	@return list of system events
*/
func (d *databaseImpl) ListSystemEvents(
	_ context.Context, filters SystemEventQueryFilter,
) ([]models.SystemEventAudit, error) {
	query := d.db.Model(&SystemEventAuditDBEntry{})

	if len(filters.EventTypes) > 0 {
		eventTypes := make([]string, 0, len(filters.EventTypes))
		for _, eventType := range filters.EventTypes {
			eventTypes = append(eventTypes, string(eventType))
		}
		query = query.Where("type in ?", eventTypes)
	}

	if filters.EventsAfter != nil {
		query = query.Where("created_at >= ?", filters.EventsAfter.UTC())
	}
	if filters.EventsBefore != nil {
		query = query.Where("created_at <= ?", filters.EventsBefore.UTC())
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	// ULIDs sort by creation time as well; use them to break ties within one timestamp
	query = query.Order("created_at").Order("id")

	var entries []SystemEventAuditDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list captured system events [%w]", translateError(tmp.Error))
	}

	result := []models.SystemEventAudit{}
	for _, entry := range entries {
		result = append(result, entry.toModel())
	}

	return result, nil
}
