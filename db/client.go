package db

import (
	"context"
	"fmt"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported SQL dialects
const (
	DialectSqlite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

/*
GetSqliteDialector define Sqlite GORM dialector

	@param dbFile string - Sqlite DB file
	@return GORM sqlite dialector
*/
func GetSqliteDialector(dbFile string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbFile))
}

/*
GetMySQLDialector define MySQL GORM dialector

	@param dsn string - MySQL DSN (e.g. "user:pass@tcp(host:3306)/reports?parseTime=true")
	@return GORM MySQL dialector
*/
func GetMySQLDialector(dsn string) gorm.Dialector {
	return mysql.Open(dsn)
}

/*
GetPostgresDialector define Postgres GORM dialector

	@param dsn string - Postgres DSN
	@return GORM Postgres dialector
*/
func GetPostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

/*
GetDialector select the GORM dialector for a dialect name

	@param dialect string - one of "sqlite", "mysql", "postgres"
	@param dsn string - connection string; for sqlite, the DB file path
	@return GORM dialector
*/
func GetDialector(dialect, dsn string) (gorm.Dialector, error) {
	switch dialect {
	case DialectSqlite:
		return GetSqliteDialector(dsn), nil
	case DialectMySQL:
		return GetMySQLDialector(dsn), nil
	case DialectPostgres:
		return GetPostgresDialector(dsn), nil
	}
	return nil, fmt.Errorf("unsupported SQL dialect '%s'", dialect)
}

// PoolParams SQL connection pool settings
type PoolParams struct {
	// MaxIdleConns max number of idle connections kept in the pool
	MaxIdleConns int
	// MaxOpenConns max number of open connections
	MaxOpenConns int
	// ConnMaxLifetime max time a connection may be reused
	ConnMaxLifetime time.Duration
}

// DefaultPoolParams pool settings used when none are given
func DefaultPoolParams() PoolParams {
	return PoolParams{MaxIdleConns: 5, MaxOpenConns: 15, ConnMaxLifetime: 300 * time.Second}
}

// Client manages connections and transactions with a DB
type Client interface {
	/*
		RunSQLInTransaction execute SQL calls within a transaction

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, tx *gorm.DB) error - the callback to execute
	*/
	RunSQLInTransaction(
		ctx context.Context, coreLogic func(ctx context.Context, tx *gorm.DB) error,
	) error

	/*
		UseDatabase utilize a `Database` instance

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
	*/
	UseDatabase(
		ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
	) error

	/*
		UseDatabaseInTransaction utilize a `Database` instance in a transaction

			@param ctx context.Context - execution context
			@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
	*/
	UseDatabaseInTransaction(
		ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
	) error

	/*
		Ping verify the DB is reachable

			@param ctx context.Context - execution context
	*/
	Ping(ctx context.Context) error

	// Close release the connection pool
	Close() error
}

// clientImpl implements Client
type clientImpl struct {
	goutils.Component
	db *gorm.DB
}

/*
NewConnection define a new SQL client

	@param dbDialector gorm.Dialector - GORM dialector
	@param dbLogLevel logger.LogLevel - SQL log level
	@param pool PoolParams - connection pool settings
	@return new client
*/
func NewConnection(
	dbDialector gorm.Dialector, dbLogLevel logger.LogLevel, pool PoolParams,
) (Client, error) {
	logTags := log.Fields{"module": "db", "component": "sql-client"}

	db, err := gorm.Open(dbDialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(dbLogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect with DB [%w]", translateError(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access DB connection pool [%w]", err)
	}
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	instance := &clientImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db: db,
	}

	log.WithFields(logTags).
		WithField("dialect", dbDialector.Name()).
		WithField("max-open", pool.MaxOpenConns).
		Debug("SQL client ready")

	return instance, nil
}

/*
RunSQLInTransaction execute SQL calls within a transaction

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, tx *gorm.DB) error - the callback to execute
*/
func (c *clientImpl) RunSQLInTransaction(
	ctx context.Context, coreLogic func(ctx context.Context, tx *gorm.DB) error,
) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return coreLogic(ctx, tx)
	})
}

/*
UseDatabase utilize a `Database` instance

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func (c *clientImpl) UseDatabase(
	ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	dbClient, err := newDatabase(ctx, c.db.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to define `Database` instance: [%w]", err)
	}
	return coreLogic(ctx, dbClient)
}

/*
UseDatabaseInTransaction utilize a `Database` instance in a transaction

	@param ctx context.Context - execution context
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func (c *clientImpl) UseDatabaseInTransaction(
	ctx context.Context, coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	err := c.RunSQLInTransaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		dbClient, err := newDatabase(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to define `Database` instance: [%w]", err)
		}
		return coreLogic(ctx, dbClient)
	})
	if err != nil {
		// Failures to begin or commit come straight from the driver
		return translateError(err)
	}
	return nil
}

/*
Ping verify the DB is reachable

	@param ctx context.Context - execution context
*/
func (c *clientImpl) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access DB connection pool [%w]", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("DB ping failed [%w]", translateError(err))
	}
	return nil
}

// Close release the connection pool
func (c *clientImpl) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

/*
ActiveSessionWrapper helper function for deciding whether to start a new transaction
or use an existing one.

	@param ctx context.Context - execution context
	@param activeDBClient Database - existing database transaction
	@param persistence Client - persistence client
	@param coreLogic func(ctx context.Context, dbClient Database) error - the callback to execute
*/
func ActiveSessionWrapper(
	ctx context.Context,
	activeDBClient Database,
	persistence Client,
	coreLogic func(ctx context.Context, dbClient Database) error,
) error {
	if activeDBClient == nil {
		return persistence.UseDatabaseInTransaction(ctx, coreLogic)
	}
	return coreLogic(ctx, activeDBClient)
}
