package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alwitt/reporter/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestTokenService(t *testing.T, algorithm string) (auth.TokenService, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testStartTime)
	uut, err := auth.NewTokenService(auth.TokenServiceParams{
		Secret:    []byte("unit-test-secret"),
		Algorithm: algorithm,
		TTL:       auth.DefaultTokenTTL,
		Clock:     clock,
	})
	require.NoError(t, err)
	return uut, clock
}

func requireAuthErrorKind(t *testing.T, err error, kind auth.AuthErrorKind) {
	var authErr *auth.AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
	assert.Equal(t, kind, authErr.Kind, authErr.Error())
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	for _, algorithm := range []string{"HS256", "HS384", "HS512"} {
		t.Run(algorithm, func(t *testing.T) {
			t.Parallel()
			uut, clock := newTestTokenService(t, algorithm)

			token, err := uut.Issue("alice")
			require.NoError(t, err)

			subject, err := uut.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "alice", subject)

			// Still valid just before expiry
			clock.Advance(auth.DefaultTokenTTL - time.Second)
			subject, err = uut.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "alice", subject)

			// Rejected after
			clock.Advance(2 * time.Second)
			_, err = uut.Verify(token)
			requireAuthErrorKind(t, err, auth.AuthErrorExpired)
		})
	}
}

func TestTokenZeroTTL(t *testing.T) {
	t.Parallel()
	uut, clock := newTestTokenService(t, "HS256")

	token, err := uut.IssueWithTTL("alice", 0)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = uut.Verify(token)
	requireAuthErrorKind(t, err, auth.AuthErrorExpired)
}

func TestTokenExpiryBoundary(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	// Issued mid-second; exp is encoded as the whole second
	clock := clockwork.NewFakeClockAt(testStartTime.Add(400 * time.Millisecond))
	uut, err := auth.NewTokenService(auth.TokenServiceParams{
		Secret:    []byte("unit-test-secret"),
		Algorithm: "HS256",
		TTL:       10 * time.Second,
		Clock:     clock,
	})
	require.NoError(t, err)

	token, err := uut.Issue("alice")
	require.NoError(t, err)

	// Full lifetime honored despite the truncated expiry
	clock.Advance(9600 * time.Millisecond)
	subject, err := uut.Verify(token)
	assert.Nil(err)
	assert.Equal("alice", subject)

	// Still inside the expiry second
	clock.Advance(900 * time.Millisecond)
	_, err = uut.Verify(token)
	assert.Nil(err)

	// Past the expiry second
	clock.Advance(100 * time.Millisecond)
	_, err = uut.Verify(token)
	requireAuthErrorKind(t, err, auth.AuthErrorExpired)
}

func TestTokenRejections(t *testing.T) {
	t.Parallel()
	uut, clock := newTestTokenService(t, "HS256")

	t.Run("other secret", func(t *testing.T) {
		t.Parallel()
		other, err := auth.NewTokenService(auth.TokenServiceParams{
			Secret: []byte("another-secret"), Algorithm: "HS256", TTL: time.Hour, Clock: clock,
		})
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = uut.Verify(token)
		requireAuthErrorKind(t, err, auth.AuthErrorInvalidSignature)
	})

	t.Run("tampered signature", func(t *testing.T) {
		t.Parallel()
		token, err := uut.Issue("alice")
		require.NoError(t, err)
		tampered := token[:len(token)-2] + "xx"
		if tampered == token {
			tampered = token[:len(token)-2] + "yy"
		}

		_, err = uut.Verify(tampered)
		assert.Error(t, err)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		t.Parallel()
		other, err := auth.NewTokenService(auth.TokenServiceParams{
			Secret: []byte("unit-test-secret"), Algorithm: "HS512", TTL: time.Hour, Clock: clock,
		})
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = uut.Verify(token)
		requireAuthErrorKind(t, err, auth.AuthErrorMalformed)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testStartTime.Add(time.Hour)),
		}).SignedString([]byte("unit-test-secret"))
		require.NoError(t, err)

		_, err = uut.Verify(token)
		requireAuthErrorKind(t, err, auth.AuthErrorMissingSubject)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "alice",
		}).SignedString([]byte("unit-test-secret"))
		require.NoError(t, err)

		_, err = uut.Verify(token)
		requireAuthErrorKind(t, err, auth.AuthErrorMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := uut.Verify("not.a.token")
		requireAuthErrorKind(t, err, auth.AuthErrorMalformed)

		_, err = uut.Verify("")
		requireAuthErrorKind(t, err, auth.AuthErrorMalformed)
	})
}

func TestTokenIssueArguments(t *testing.T) {
	t.Parallel()
	uut, _ := newTestTokenService(t, "HS256")

	_, err := uut.Issue("")
	assert.Error(t, err)

	_, err = uut.IssueWithTTL("alice", -time.Minute)
	assert.Error(t, err)
}

func TestNewTokenServiceParams(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()

	_, err := auth.NewTokenService(auth.TokenServiceParams{
		Algorithm: "HS256", TTL: time.Hour, Clock: clock,
	})
	assert.Error(t, err)

	_, err = auth.NewTokenService(auth.TokenServiceParams{
		Secret: []byte("secret"), Algorithm: "RS256", TTL: time.Hour, Clock: clock,
	})
	assert.Error(t, err)

	_, err = auth.NewTokenService(auth.TokenServiceParams{
		Secret: []byte("secret"), Algorithm: "HS256", TTL: time.Hour,
	})
	assert.Error(t, err)
}
