package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/access-control/internal/core/domain"
)

const minSecretLength = 32

// jwtClaims is the wire shape of a token. The user id travels in "sub".
type jwtClaims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTCodec encodes claims as HS256-signed JWTs. Decoding uses strict base64
// so that any change to the token string is detected.
type JWTCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTCodec validates the secret and returns a codec. issuer may be empty.
func NewJWTCodec(secret, issuer string) (*JWTCodec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)
	}
	return &JWTCodec{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (c *JWTCodec) Encode(claims domain.TokenClaims) (string, error) {
	if claims.UserID == "" {
		return "", fmt.Errorf("encode token: %w: user id", domain.ErrTokenMissingField)
	}

	wire := jwtClaims{
		Username:    claims.Username,
		Role:        string(claims.Role),
		Permissions: claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.UserID,
			Issuer:  c.issuer,
		},
	}
	if !claims.IssuedAt.IsZero() {
		wire.IssuedAt = jwt.NewNumericDate(claims.IssuedAt)
	}
	if !claims.ExpiresAt.IsZero() {
		wire.ExpiresAt = jwt.NewNumericDate(claims.ExpiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Decode(token string) (domain.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var wire jwtClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &wire, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return domain.TokenClaims{}, classify(err)
	}

	if wire.Subject == "" {
		return domain.TokenClaims{}, fmt.Errorf("%w: user id", domain.ErrTokenMissingField)
	}

	claims := domain.TokenClaims{
		UserID:      wire.Subject,
		Username:    wire.Username,
		Role:        domain.Role(wire.Role),
		Permissions: wire.Permissions,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.UTC()
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.UTC()
	}
	return claims, nil
}

// classify maps jwt parser errors onto the codec's error kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrTokenIntegrity, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
