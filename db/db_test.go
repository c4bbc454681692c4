package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestClient(t *testing.T) db.Client {
	testDB := fmt.Sprintf("/tmp/reporter_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error, db.DefaultPoolParams())
	require.NoError(t, err)
	require.NoError(t, uut.RunSQLInTransaction(context.Background(), db.DefineTables))
	t.Cleanup(func() { _ = uut.Close() })
	return uut
}

func TestDBUserAccounts(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()
	uut := newTestClient(t)

	// Case 0: unknown user
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetUserByName(ctx, "alice")
		assert.ErrorIs(err, db.ErrNotFound)
		return nil
	}))

	// Case 1: define user
	var alice models.User
	assert.Nil(
		uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			alice, err = dbClient.DefineNewUser(ctx, "alice", "$2a$10$hash")
			return err
		}),
	)
	assert.NotZero(alice.ID)
	assert.Equal("alice", alice.Username)

	// Case 2: lookup is case-insensitive
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		for _, name := range []string{"alice", "ALICE", "Alice"} {
			user, err := dbClient.GetUserByName(ctx, name)
			assert.Nil(err)
			assert.Equal(alice, user)
		}
		return nil
	}))

	// Case 3: duplicate names are rejected regardless of case
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.DefineNewUser(ctx, "Alice", "$2a$10$other")
		return err
	})
	assert.ErrorIs(err, db.ErrAlreadyExists)

	// Case 4: name too long
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.DefineNewUser(ctx, string(make([]byte, 51)), "$2a$10$other")
		return err
	})
	assert.Error(err)

	// Creation is audited
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListSystemEvents(ctx, db.SystemEventQueryFilter{
			EventTypes: []models.SystemEventTypeENUMType{models.SystemEventTypeUserCreated},
		})
		assert.Nil(err)
		assert.Len(events, 1)
		return err
	}))
}

func TestDBUserCreationRollback(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()
	uut := newTestClient(t)

	// A failure later in the transaction discards the new user
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		if _, err := dbClient.DefineNewUser(ctx, "bob", "$2a$10$hash"); err != nil {
			return err
		}
		return errors.New("dummy error")
	})
	assert.Error(err)

	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetUserByName(ctx, "bob")
		assert.ErrorIs(err, db.ErrNotFound)
		return nil
	}))
}

func TestDBResults(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()
	uut := newTestClient(t)

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	makeResult := func(category, environment string, at time.Time) models.ResultRecord {
		return models.ResultRecord{
			Category:       category,
			Testcases:      10,
			Passed:         9,
			Failed:         1,
			Skipped:        0,
			PassPercentage: 90,
			Environment:    environment,
			Datetime:       at,
			Comments:       "ok",
		}
	}

	inputs := []models.ResultRecord{
		makeResult("smoke", "prod", baseTime),
		makeResult("smoke", "prod", baseTime.Add(time.Hour)),
		makeResult("smoke", "staging", baseTime),
		makeResult("regression", "prod", baseTime),
		makeResult("smoke", "prod", baseTime.Add(-48*time.Hour)),
		// Stored in UTC regardless of the submitted zone
		makeResult("smoke", "prod", baseTime.Add(2*time.Hour).In(time.FixedZone("EST", -5*3600))),
	}

	stored := []models.ResultRecord{}
	for _, input := range inputs {
		assert.Nil(
			uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
				entry, err := dbClient.RecordResult(ctx, input)
				if err != nil {
					return err
				}
				if len(stored) > 0 {
					assert.Greater(entry.ID, stored[len(stored)-1].ID)
				}
				stored = append(stored, entry)
				return nil
			}),
		)
	}

	// Stored records equal the input apart from the ID
	for idx, entry := range stored {
		diff := cmp.Diff(
			inputs[idx], entry,
			cmpopts.IgnoreFields(models.ResultRecord{}, "ID"),
			cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
		)
		assert.Empty(diff)
	}

	// Window query, inclusive on both ends
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		results, err := dbClient.ListResults(ctx, models.ResultRangeQuery{
			Category:    "smoke",
			Environment: "prod",
			From:        baseTime,
			To:          baseTime.Add(2 * time.Hour),
		})
		assert.Nil(err)
		assert.Len(results, 3)
		if len(results) == 3 {
			assert.Equal(stored[0].ID, results[0].ID)
			assert.Equal(stored[1].ID, results[1].ID)
			assert.Equal(stored[5].ID, results[2].ID)
			assert.Equal(time.UTC, results[2].Datetime.Location())
		}
		return err
	}))

	// Nothing outside the window
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		results, err := dbClient.ListResults(ctx, models.ResultRangeQuery{
			Category:    "smoke",
			Environment: "prod",
			From:        baseTime.Add(3 * time.Hour),
			To:          baseTime.Add(4 * time.Hour),
		})
		assert.Nil(err)
		assert.Empty(results)
		assert.NotNil(results)
		return err
	}))

	// Empty filters are matched literally
	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		results, err := dbClient.ListResults(ctx, models.ResultRangeQuery{
			From: baseTime.Add(-72 * time.Hour),
			To:   baseTime.Add(72 * time.Hour),
		})
		assert.Nil(err)
		assert.Empty(results)
		return err
	}))

	// Invalid record
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordResult(ctx, makeResult("", "prod", baseTime))
		return err
	})
	assert.Error(err)
}

func TestDBSystemEvents(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()
	uut := newTestClient(t)

	assert.Nil(
		uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := dbClient.RecordSystemEvent(
				ctx, models.SystemEventTypeLoginFailed, models.SystemEventUserRelated{Username: "eve"},
			); err != nil {
				return err
			}
			if _, err := dbClient.RecordSystemEvent(
				ctx, models.SystemEventTypeLoginSucceeded, models.SystemEventUserRelated{Username: "bob"},
			); err != nil {
				return err
			}
			_, err := dbClient.RecordSystemEvent(
				ctx,
				models.SystemEventTypeResultSubmitted,
				models.SystemEventResultRelated{
					ResultID: 1, Category: "smoke", Environment: "prod", SubmittedBy: "bob",
				},
			)
			return err
		}),
	)

	// Invalid metadata is refused
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordSystemEvent(
			ctx, models.SystemEventTypeLoginFailed, models.SystemEventUserRelated{},
		)
		return err
	})
	assert.Error(err)

	// Unknown event type is refused
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordSystemEvent(ctx, "UNKNOWN", nil)
		return err
	})
	assert.Error(err)

	assert.Nil(uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		all, err := dbClient.ListSystemEvents(ctx, db.SystemEventQueryFilter{})
		assert.Nil(err)
		assert.Len(all, 3)

		limit := 1
		offset := 1
		page, err := dbClient.ListSystemEvents(ctx, db.SystemEventQueryFilter{
			CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{Limit: &limit, Offset: &offset},
		})
		assert.Nil(err)
		assert.Len(page, 1)

		logins, err := dbClient.ListSystemEvents(ctx, db.SystemEventQueryFilter{
			EventTypes: []models.SystemEventTypeENUMType{
				models.SystemEventTypeLoginFailed, models.SystemEventTypeLoginSucceeded,
			},
		})
		assert.Nil(err)
		assert.Len(logins, 2)

		future := time.Now().Add(time.Hour)
		none, err := dbClient.ListSystemEvents(ctx, db.SystemEventQueryFilter{EventsAfter: &future})
		assert.Nil(err)
		assert.Empty(none)
		return nil
	}))
}

func TestDBPing(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	uut := newTestClient(t)
	assert.Nil(uut.Ping(context.Background()))
}

func TestGetDialector(t *testing.T) {
	assert := assert.New(t)

	for _, dialect := range []string{db.DialectSqlite, db.DialectMySQL, db.DialectPostgres} {
		dialector, err := db.GetDialector(dialect, "dsn")
		assert.Nil(err)
		assert.Equal(dialect, dialector.Name())
	}

	_, err := db.GetDialector("oracle", "dsn")
	assert.Error(err)
}

func TestParseLogLevel(t *testing.T) {
	assert := assert.New(t)

	level, err := db.ParseLogLevel("warn")
	assert.Nil(err)
	assert.Equal(logger.Warn, level)

	_, err = db.ParseLogLevel("verbose")
	assert.Error(err)
}
