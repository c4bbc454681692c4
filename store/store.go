// Package store - user and result storage controllers
package store

import (
	"context"
	"errors"
	"time"

	"github.com/alwitt/goutils"
	"github.com/alwitt/reporter/db"
	"github.com/apex/log"
	"github.com/cenkalti/backoff/v4"
)

// Error is a storage controller error
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrInvalidCredentials the user is unknown or the password does not match
const ErrInvalidCredentials = Error("incorrect username or password")

// RetryParams retry policy for idempotent reads hitting an unavailable DB
type RetryParams struct {
	// MaxAttempts total attempts, including the first
	MaxAttempts int `validate:"gte=1"`
	// InitialInterval wait before the first retry
	InitialInterval time.Duration `validate:"gte=0"`
	// MaxInterval cap on the wait between retries
	MaxInterval time.Duration `validate:"gte=0"`
}

// DefaultRetryParams read retry policy used when none is configured
func DefaultRetryParams() RetryParams {
	return RetryParams{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

/*
retryUnavailable run an idempotent operation, retrying with exponential backoff while it
fails with db.ErrUnavailable

	@param ctx context.Context - execution context
	@param component goutils.Component - the calling component, for logging
	@param params RetryParams - retry policy
	@param opName string - operation name, for logging
	@param op func() error - the operation
*/
func retryUnavailable(
	ctx context.Context,
	component goutils.Component,
	params RetryParams,
	opName string,
	op func() error,
) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = params.InitialInterval
	policy.MaxInterval = params.MaxInterval
	policy.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if params.MaxAttempts > 1 {
		maxRetries = uint64(params.MaxAttempts - 1)
	}

	return backoff.RetryNotify(
		func() error {
			err := op()
			if err == nil || errors.Is(err, db.ErrUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx),
		func(err error, wait time.Duration) {
			log.WithError(err).
				WithFields(component.GetLogTagsForContext(ctx)).
				WithField("operation", opName).
				WithField("wait", wait.String()).
				Warn("Persistence unavailable, retrying")
		},
	)
}
