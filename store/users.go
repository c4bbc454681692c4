package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alwitt/goutils"
	"github.com/alwitt/reporter/auth"
	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/models"
	"github.com/apex/log"
)

// UserStore user account lookup and provisioning
type UserStore interface {
	/*
		FindByUsername fetch a user by name, compared case-insensitively

			@param ctx context.Context - execution context
			@param username string - user name
			@returns user entry, or db.ErrNotFound
	*/
	FindByUsername(ctx context.Context, username string) (models.User, error)

	/*
		Authenticate verify a user's credentials

			@param ctx context.Context - execution context
			@param username string - user name
			@param password string - plaintext password
			@returns the user, or ErrInvalidCredentials
	*/
	Authenticate(ctx context.Context, username, password string) (models.User, error)

	/*
		CreateUser provision a new user account

			@param ctx context.Context - execution context
			@param username string - user name, unique ignoring case
			@param password string - plaintext password
			@param activeDBClient Database - existing database transaction
			@returns the new user
	*/
	CreateUser(
		ctx context.Context, username, password string, activeDBClient db.Database,
	) (models.User, error)
}

// userStoreImpl implements UserStore
type userStoreImpl struct {
	goutils.Component
	persistence db.Client
	retry       RetryParams
}

/*
NewUserStore define new user store

	@param persistence db.Client - persistence layer client
	@param retry RetryParams - read retry policy
	@returns store instance
*/
func NewUserStore(persistence db.Client, retry RetryParams) UserStore {
	logTags := log.Fields{"module": "store", "component": "user-store"}

	return &userStoreImpl{
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
FindByUsername fetch a user by name, compared case-insensitively

	@param ctx context.Context - execution context
	@param username string - user name
	@returns user entry, or db.ErrNotFound
*/
func (s *userStoreImpl) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := retryUnavailable(ctx, s.Component, s.retry, "find-user", func() error {
		return s.persistence.UseDatabase(ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			user, err = dbClient.GetUserByName(ctx, username)
			return err
		})
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

/*
Authenticate verify a user's credentials

	@param ctx context.Context - execution context
	@param username string - user name
	@param password string - plaintext password
	@returns the user, or ErrInvalidCredentials
*/
func (s *userStoreImpl) Authenticate(
	ctx context.Context, username, password string,
) (models.User, error) {
	logTags := s.GetLogTagsForContext(ctx)

	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return models.User{}, fmt.Errorf("user '%s' lookup failed [%w]", username, err)
		}
		s.recordLoginEvent(ctx, models.SystemEventTypeLoginFailed, username)
		log.WithFields(logTags).WithField("username", username).Info("Login for unknown user")
		return models.User{}, ErrInvalidCredentials
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.recordLoginEvent(ctx, models.SystemEventTypeLoginFailed, username)
		log.WithFields(logTags).WithField("username", username).Info("Login with wrong password")
		return models.User{}, ErrInvalidCredentials
	}

	s.recordLoginEvent(ctx, models.SystemEventTypeLoginSucceeded, user.Username)
	return user, nil
}

// recordLoginEvent audit a login attempt; failing to do so does not change the outcome
func (s *userStoreImpl) recordLoginEvent(
	ctx context.Context, eventType models.SystemEventTypeENUMType, username string,
) {
	if err := s.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			_, err := dbClient.RecordSystemEvent(
				ctx, eventType, models.SystemEventUserRelated{Username: username},
			)
			return err
		},
	); err != nil {
		log.WithError(err).
			WithFields(s.GetLogTagsForContext(ctx)).
			WithField("event-type", eventType).
			Error("Failed to record login audit event")
	}
}

/*
CreateUser provision a new user account

	@param ctx context.Context - execution context
	@param username string - user name, unique ignoring case
	@param password string - plaintext password
	@param activeDBClient Database - existing database transaction
	@returns the new user
*/
func (s *userStoreImpl) CreateUser(
	ctx context.Context, username, password string, activeDBClient db.Database,
) (models.User, error) {
	if password == "" {
		return models.User{}, fmt.Errorf("password for user '%s' must not be empty", username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password of user '%s' [%w]", username, err)
	}

	var user models.User
	if err := db.ActiveSessionWrapper(
		ctx, activeDBClient, s.persistence,
		func(ctx context.Context, dbClient db.Database) error {
			user, err = dbClient.DefineNewUser(ctx, username, hash)
			return err
		},
	); err != nil {
		return models.User{}, fmt.Errorf("failed to create user '%s' [%w]", username, err)
	}

	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("username", user.Username).
		WithField("user-id", user.ID).
		Info("Created user")

	return user, nil
}
