package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultTokenTTL bearer token lifetime when none is configured
const DefaultTokenTTL = 1440 * time.Minute

// expiryLeeway grace past the encoded expiry second
const expiryLeeway = time.Second

// AuthErrorKind reason a token was rejected
type AuthErrorKind int

const (
	// AuthErrorInvalidSignature token signature does not verify
	AuthErrorInvalidSignature AuthErrorKind = iota + 1
	// AuthErrorExpired token is past its expiry
	AuthErrorExpired
	// AuthErrorMissingSubject token carries no subject
	AuthErrorMissingSubject
	// AuthErrorMalformed token could not be decoded or uses the wrong algorithm
	AuthErrorMalformed
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthErrorInvalidSignature:
		return "invalid-signature"
	case AuthErrorExpired:
		return "expired"
	case AuthErrorMissingSubject:
		return "missing-subject"
	case AuthErrorMalformed:
		return "malformed"
	}
	return "unknown"
}

// AuthError bearer token verification failure
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token rejected: %s", e.Kind)
	}
	return fmt.Sprintf("token rejected: %s [%s]", e.Kind, e.Err.Error())
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TokenService issues and verifies signed, time-limited bearer tokens
type TokenService interface {
	/*
		Issue issue a token for a subject with the default lifetime

			@param subject string - token subject
			@return signed token
	*/
	Issue(subject string) (string, error)

	/*
		IssueWithTTL issue a token for a subject with an explicit lifetime

			@param subject string - token subject
			@param ttl time.Duration - token lifetime; zero yields a token expiring at issue time
			@return signed token
	*/
	IssueWithTTL(subject string, ttl time.Duration) (string, error)

	/*
		Verify check a token's signature and expiry

			@param token string - signed token
			@return the token subject, or an *AuthError
	*/
	Verify(token string) (string, error)
}

// TokenServiceParams token service parameters
type TokenServiceParams struct {
	// Secret symmetric signing secret
	Secret []byte `validate:"required,min=1"`
	// Algorithm HMAC signing algorithm
	Algorithm string `validate:"required,oneof=HS256 HS384 HS512"`
	// TTL default token lifetime
	TTL time.Duration `validate:"gte=0"`
	// Clock time source
	Clock clockwork.Clock `validate:"required"`
}

// tokenServiceImpl implements TokenService
type tokenServiceImpl struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  clockwork.Clock
	parser *jwt.Parser
}

/*
NewTokenService define a new token service

	@param params TokenServiceParams - service parameters
	@return new service
*/
func NewTokenService(params TokenServiceParams) (TokenService, error) {
	if err := validator.New().Struct(&params); err != nil {
		return nil, fmt.Errorf("token service parameters are not valid [%w]", err)
	}

	method := jwt.GetSigningMethod(params.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported token signing algorithm '%s'", params.Algorithm)
	}

	return &tokenServiceImpl{
		secret: params.Secret,
		method: method,
		ttl:    params.TTL,
		clock:  params.Clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithTimeFunc(params.Clock.Now),
			jwt.WithExpirationRequired(),
			// exp is whole seconds; a token stays valid through its expiry second
			jwt.WithLeeway(expiryLeeway),
		),
	}, nil
}

/*
Issue issue a token for a subject with the default lifetime

	@param subject string - token subject
	@return signed token
*/
func (s *tokenServiceImpl) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

/*
IssueWithTTL issue a token for a subject with an explicit lifetime

	@param subject string - token subject
	@param ttl time.Duration - token lifetime; zero yields a token expiring at issue time
	@return signed token
*/
func (s *tokenServiceImpl) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject must not be empty")
	}
	if ttl < 0 {
		return "", fmt.Errorf("token lifetime must not be negative")
	}

	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token [%w]", err)
	}
	return signed, nil
}

/*
Verify check a token's signature and expiry

	@param token string - signed token
	@return the token subject, or an *AuthError
*/
func (s *tokenServiceImpl) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", &AuthError{Kind: s.classify(parsed, err), Err: err}
	}

	if claims.Subject == "" {
		return "", &AuthError{Kind: AuthErrorMissingSubject}
	}
	return claims.Subject, nil
}

func (s *tokenServiceImpl) classify(parsed *jwt.Token, err error) AuthErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return AuthErrorExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		// An algorithm outside the accepted set is also reported as a signature failure
		if parsed != nil && parsed.Method != nil && parsed.Method.Alg() != s.method.Alg() {
			return AuthErrorMalformed
		}
		return AuthErrorInvalidSignature
	}
	return AuthErrorMalformed
}
