// Package models - domain types of the results reporter
package models

// User a reporter user account
//
// Users are provisioned out-of-band (see the `user create` command); the HTTP API only reads
// them.
type User struct {
	// ID user ID, assigned by the store
	ID uint `json:"userId"`

	// Username unique login name
	Username string `json:"username" validate:"required,min=1,max=50"`

	// PasswordHash bcrypt hash of the user's password
	PasswordHash string `json:"-" validate:"required,max=100"`
}
