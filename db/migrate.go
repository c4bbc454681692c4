package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_ai_ci"

// AllTables the DB entry types backing the persisted tables
func AllTables() []interface{} {
	return []interface{}{
		&UserDBEntry{},
		&ResultDBEntry{},
		&SystemEventAuditDBEntry{},
	}
}

/*
DefineTables create or upgrade the tables

	@param ctx context.Context - execution context
	@param db *gorm.DB - DB session, usually a transaction from Client.RunSQLInTransaction
*/
func DefineTables(ctx context.Context, db *gorm.DB) error {
	session := db.WithContext(ctx)
	if session.Dialector.Name() == DialectMySQL {
		session = session.Set("gorm:table_options", mysqlTableOptions)
	}
	if err := session.AutoMigrate(AllTables()...); err != nil {
		return fmt.Errorf("table migration failed [%w]", translateError(err))
	}
	return nil
}
