// Package auth - password hashing and bearer token issuance
package auth

import "golang.org/x/crypto/bcrypt"

/*
HashPassword hash a password with bcrypt using a fresh salt

Fails if the password is longer than 72 bytes.

	@param password T - plaintext password
	@return the bcrypt hash
*/
func HashPassword[T ~string | ~[]byte](password T) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

/*
VerifyPassword check a plaintext password against a bcrypt hash

A malformed hash never matches.

	@param password T - plaintext password
	@param hash string - bcrypt hash
	@return whether the password matches
*/
func VerifyPassword[T ~string | ~[]byte](password T, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
