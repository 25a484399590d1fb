package middleware

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

const bearerScheme = "Bearer"

// Authorizer turns an Authorization header into an AuthContext and checks it
// against role and permission requirements. It never consults the user store:
// everything it knows comes from the token.
type Authorizer struct {
	codec ports.TokenCodec
	audit ports.AuditRecorder
	log   zerolog.Logger
}

// NewAuthorizer returns an Authorizer. audit may be nil.
func NewAuthorizer(codec ports.TokenCodec, audit ports.AuditRecorder, log zerolog.Logger) *Authorizer {
	return &Authorizer{codec: codec, audit: audit, log: log}
}

// Authenticate expects exactly "Bearer <token>". Anything else is rejected
// before the token is decoded.
func (a *Authorizer) Authenticate(header string) (domain.AuthContext, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return domain.AuthContext{}, domain.ErrMalformedHeader
	}

	claims, err := a.codec.Decode(parts[1])
	if err != nil {
		return domain.AuthContext{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return domain.NewAuthContext(claims), nil
}
