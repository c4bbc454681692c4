package db

import (
	"context"
	"fmt"

	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
	"gorm.io/gorm/clause"
)

/*
RecordResult store a new result record

	@param ctx context.Context - execution context
	@param record models.ResultRecord - the result; its ID is ignored
	@returns the stored record with its assigned ID
*/
func (d *databaseImpl) RecordResult(
	ctx context.Context, record models.ResultRecord,
) (models.ResultRecord, error) {
	if err := d.validator.Struct(&record); err != nil {
		return models.ResultRecord{}, fmt.Errorf("new result is not valid [%w]", err)
	}

	newEntry := resultEntryFromModel(record)
	newEntry.ResultID = 0
	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.ResultRecord{}, fmt.Errorf(
			"new result failed insert [%w]", translateError(tmp.Error),
		)
	}

	log.WithFields(d.GetLogTagsForContext(ctx)).
		WithField("result-id", newEntry.ResultID).
		WithField("category", newEntry.Category).
		WithField("environment", newEntry.Environment).
		Debug("Stored new result")

	return newEntry.toModel(), nil
}

/*
ListResults list the results matching a category and environment within a time window

	@param ctx context.Context - execution context
	@param filters models.ResultRangeQuery - query conditions
	@return matching results, ordered by ID
*/
func (d *databaseImpl) ListResults(
	_ context.Context, filters models.ResultRangeQuery,
) ([]models.ResultRecord, error) {
	var entries []ResultDBEntry
	if tmp := d.db.
		Where(clause.Eq{Column: clause.Column{Name: "category"}, Value: filters.Category}).
		Where(clause.Eq{Column: clause.Column{Name: "environment"}, Value: filters.Environment}).
		Where(clause.Gte{Column: clause.Column{Name: "datetime"}, Value: filters.From.UTC()}).
		Where(clause.Lte{Column: clause.Column{Name: "datetime"}, Value: filters.To.UTC()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "resultId"}}).
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list results [%w]", translateError(tmp.Error))
	}

	result := []models.ResultRecord{}
	for _, entry := range entries {
		result = append(result, entry.toModel())
	}
	return result, nil
}
