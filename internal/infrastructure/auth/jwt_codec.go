package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scoresync/account-service/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// tokenClaims is the JWT payload: the username plus the registered iat/exp.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTCodec implements ports.TokenCodec with HS256-signed JWTs. It is
// immutable after construction and safe for concurrent use.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec builds a codec signing with secret. A non-positive ttl selects
// the 24h default.
func NewJWTCodec(secret string, ttl time.Duration) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token binding username and the issuance time.
func (c *JWTCodec) Issue(username string) (string, error) {
	now := c.now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies token and returns its claims.
func (c *JWTCodec) Decode(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Username == "" {
		return nil, domain.ErrMissingUsernameClaim
	}

	out := &domain.Claims{Username: claims.Username}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// classify maps jwt parse errors onto the domain token errors.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenBadSignature
	default:
		return domain.ErrTokenMalformed
	}
}

// ExtractToken pulls the token out of an Authorization header value. Both the
// bare token and the "Bearer <token>" form are accepted.
func ExtractToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, "bearer") {
		return "", domain.ErrMissingToken
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return header, nil
	}
	if !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrTokenMalformed
	}
	token := strings.TrimSpace(rest)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}
