package db

import (
	"fmt"

	"gorm.io/gorm/logger"
)

var sqlLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

/*
ParseLogLevel convert a SQL log level name into a GORM log level

	@param level string - one of "silent", "error", "warn", "info"
	@return GORM log level
*/
func ParseLogLevel(level string) (logger.LogLevel, error) {
	parsed, ok := sqlLogLevels[level]
	if !ok {
		return logger.Silent, fmt.Errorf("undefined SQL log level '%s'", level)
	}
	return parsed, nil
}
