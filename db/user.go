package db

import (
	"context"
	"fmt"

	"github.com/alwitt/reporter/models"
	"gorm.io/gorm/clause"
)

// sameUserName match user names ignoring case
func sameUserName(username string) clause.Expr {
	return clause.Expr{
		SQL:  "LOWER(?) = LOWER(?)",
		Vars: []interface{}{clause.Column{Name: "userName"}, username},
	}
}

/*
DefineNewUser define a new user account

	@param ctx context.Context - execution context
	@param username string - unique user name
	@param passwordHash string - bcrypt hash of the password
	@returns user entry
*/
func (d *databaseImpl) DefineNewUser(
	ctx context.Context, username, passwordHash string,
) (models.User, error) {
	user := models.User{Username: username, PasswordHash: passwordHash}
	if err := d.validator.Struct(&user); err != nil {
		return models.User{}, fmt.Errorf("new user '%s' is not valid [%w]", username, err)
	}

	// The unique index may be case sensitive depending on the collation
	var existing []UserDBEntry
	if tmp := d.db.
		Where(sameUserName(username)).
		Limit(1).
		Find(&existing); tmp.Error != nil {
		return models.User{}, fmt.Errorf(
			"user '%s' uniqueness check failed [%w]", username, translateError(tmp.Error),
		)
	}
	if len(existing) > 0 {
		return models.User{}, fmt.Errorf(
			"user '%s' collides with '%s' [%w]", username, existing[0].Username, ErrAlreadyExists,
		)
	}

	newEntry := userEntryFromModel(user)
	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.User{}, fmt.Errorf(
			"new user '%s' failed insert [%w]", username, translateError(tmp.Error),
		)
	}

	if _, err := d.RecordSystemEvent(
		ctx,
		models.SystemEventTypeUserCreated,
		models.SystemEventUserRelated{Username: username},
	); err != nil {
		return models.User{}, fmt.Errorf(
			"failed to log new user '%s' audit event [%w]", username, err,
		)
	}

	return newEntry.toModel(), nil
}

/*
GetUserByName fetch a user by name, compared case-insensitively

	@param ctx context.Context - execution context
	@param username string - user name
	@returns user entry
*/
func (d *databaseImpl) GetUserByName(_ context.Context, username string) (models.User, error) {
	var entry UserDBEntry
	if tmp := d.db.
		Where(sameUserName(username)).
		First(&entry); tmp.Error != nil {
		return models.User{}, fmt.Errorf(
			"failed to read user '%s' [%w]", username, translateError(tmp.Error),
		)
	}
	return entry.toModel(), nil
}
