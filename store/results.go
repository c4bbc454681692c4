package store

import (
	"context"
	"fmt"

	"github.com/alwitt/goutils"
	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
)

// ResultsStore test run result storage
type ResultsStore interface {
	/*
		Insert store a new result record

			@param ctx context.Context - execution context
			@param record models.ResultRecord - the result; its ID is ignored
			@param submittedBy string - name of the submitting user
			@param activeDBClient Database - existing database transaction
			@returns the stored record with its assigned ID
	*/
	Insert(
		ctx context.Context,
		record models.ResultRecord,
		submittedBy string,
		activeDBClient db.Database,
	) (models.ResultRecord, error)

	/*
		QueryRange list the results of one category and environment within a time window

			@param ctx context.Context - execution context
			@param query models.ResultRangeQuery - query conditions; window is inclusive
			@returns matching results, ordered by ID
	*/
	QueryRange(ctx context.Context, query models.ResultRangeQuery) ([]models.ResultRecord, error)
}

// resultsStoreImpl implements ResultsStore
type resultsStoreImpl struct {
	goutils.Component
	persistence db.Client
	retry       RetryParams
}

/*
NewResultsStore define new results store

	@param persistence db.Client - persistence layer client
	@param retry RetryParams - read retry policy
	@returns store instance
*/
func NewResultsStore(persistence db.Client, retry RetryParams) ResultsStore {
	logTags := log.Fields{"module": "store", "component": "results-store"}

	return &resultsStoreImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence: persistence,
		retry:       retry,
	}
}

/*
Insert store a new result record

	@param ctx context.Context - execution context
	@param record models.ResultRecord - the result; its ID is ignored
	@param submittedBy string - name of the submitting user
	@param activeDBClient Database - existing database transaction
	@returns the stored record with its assigned ID
*/
func (s *resultsStoreImpl) Insert(
	ctx context.Context,
	record models.ResultRecord,
	submittedBy string,
	activeDBClient db.Database,
) (models.ResultRecord, error) {
	record.Datetime = record.Datetime.UTC()

	var stored models.ResultRecord
	if err := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence,
		func(ctx context.Context, dbClient db.Database) error {
			var err error
			stored, err = dbClient.RecordResult(ctx, record)
			if err != nil {
				return err
			}

			if _, err := dbClient.RecordSystemEvent(
				ctx,
				models.SystemEventTypeResultSubmitted,
				models.SystemEventResultRelated{
					ResultID:    stored.ID,
					Category:    stored.Category,
					Environment: stored.Environment,
					SubmittedBy: submittedBy,
				},
			); err != nil {
				return fmt.Errorf("failed to log result %d audit event [%w]", stored.ID, err)
			}
			return nil
		},
	); err != nil {
		return models.ResultRecord{}, fmt.Errorf("failed to store result [%w]", err)
	}

	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("result-id", stored.ID).
		WithField("submitted-by", submittedBy).
		Info("Stored result")

	return stored, nil
}

/*
QueryRange list the results of one category and environment within a time window

	@param ctx context.Context - execution context
	@param query models.ResultRangeQuery - query conditions; window is inclusive
	@returns matching results, ordered by ID
*/
func (s *resultsStoreImpl) QueryRange(
	ctx context.Context, query models.ResultRangeQuery,
) ([]models.ResultRecord, error) {
	query.From = query.From.UTC()
	query.To = query.To.UTC()

	var results []models.ResultRecord
	err := retryUnavailable(ctx, s.Component, s.retry, "query-results", func() error {
		return s.persistence.UseDatabase(ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			results, err = dbClient.ListResults(ctx, query)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query results [%w]", err)
	}
	return results, nil
}
