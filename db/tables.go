package db

import (
	"time"

	"github.com/alwitt/reporter/models"
	"gorm.io/datatypes"
)

// --------------------------------------------------------------------------------------
// Users

// UserDBEntry user account DB entry
type UserDBEntry struct {
	UserID   uint   `gorm:"column:userId;primaryKey;autoIncrement"`
	Username string `gorm:"column:userName;size:50;not null;uniqueIndex"`
	Password string `gorm:"column:password;size:100;not null"`
}

// TableName hard code table name
func (UserDBEntry) TableName() string {
	return "user"
}

func (e UserDBEntry) toModel() models.User {
	return models.User{ID: e.UserID, Username: e.Username, PasswordHash: e.Password}
}

func userEntryFromModel(user models.User) UserDBEntry {
	return UserDBEntry{UserID: user.ID, Username: user.Username, Password: user.PasswordHash}
}

// --------------------------------------------------------------------------------------
// Results

// ResultDBEntry test run result DB entry
type ResultDBEntry struct {
	ResultID       uint      `gorm:"column:resultId;primaryKey;autoIncrement"`
	Category       string    `gorm:"column:category;size:150;not null;index:idx_results_lookup,priority:1"`
	Testcases      int       `gorm:"column:testcases;not null"`
	Passed         int       `gorm:"column:passed;not null"`
	Failed         int       `gorm:"column:failed;not null"`
	Skipped        int       `gorm:"column:skipped;not null"`
	PassPercentage int       `gorm:"column:passpercentage;not null"`
	Environment    string    `gorm:"column:environment;size:150;not null;index:idx_results_lookup,priority:2"`
	Datetime       time.Time `gorm:"column:datetime;not null;index:idx_results_lookup,priority:3"`
	Comments       string    `gorm:"column:comments;size:200;not null"`
}

// TableName hard code table name
func (ResultDBEntry) TableName() string {
	return "results"
}

func (e ResultDBEntry) toModel() models.ResultRecord {
	return models.ResultRecord{
		ID:             e.ResultID,
		Category:       e.Category,
		Testcases:      e.Testcases,
		Passed:         e.Passed,
		Failed:         e.Failed,
		Skipped:        e.Skipped,
		PassPercentage: e.PassPercentage,
		Environment:    e.Environment,
		Datetime:       e.Datetime.UTC(),
		Comments:       e.Comments,
	}
}

func resultEntryFromModel(record models.ResultRecord) ResultDBEntry {
	return ResultDBEntry{
		ResultID:       record.ID,
		Category:       record.Category,
		Testcases:      record.Testcases,
		Passed:         record.Passed,
		Failed:         record.Failed,
		Skipped:        record.Skipped,
		PassPercentage: record.PassPercentage,
		Environment:    record.Environment,
		Datetime:       record.Datetime.UTC(),
		Comments:       record.Comments,
	}
}

// --------------------------------------------------------------------------------------
// System audit events

// SystemEventAuditDBEntry system audit event DB entry
type SystemEventAuditDBEntry struct {
	ID        string         `gorm:"column:id;primaryKey;size:26"`
	EventType string         `gorm:"column:type;size:32;not null;index"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
}

// TableName hard code table name
func (SystemEventAuditDBEntry) TableName() string {
	return "system_audit_events"
}

func (e SystemEventAuditDBEntry) toModel() models.SystemEventAudit {
	return models.SystemEventAudit{
		ID:        e.ID,
		EventType: models.SystemEventTypeENUMType(e.EventType),
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.UTC(),
	}
}
