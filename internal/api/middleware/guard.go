package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/pkg/metrics"
)

const authContextKey = "auth_context"

// GuardedHandler is a route handler that receives the caller's AuthContext.
type GuardedHandler func(c echo.Context, ac domain.AuthContext) error

// Guard wraps a handler with authentication and, when non-empty, a role and a
// permission requirement. Errors from the checks or from the handler itself
// are converted to echo HTTP errors; kinds outside the status table become 400.
func (a *Authorizer) Guard(role domain.Role, permission string) func(GuardedHandler) echo.HandlerFunc {
	return func(next GuardedHandler) echo.HandlerFunc {
		return func(c echo.Context) error {
			ac, err := a.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err == nil && role != "" {
				err = a.RequireRole(ac, role)
			}
			if err == nil && permission != "" {
				err = a.RequirePermission(ac, permission)
			}
			if err != nil {
				a.deny(c, ac, err)
				return guardError(err)
			}

			metrics.AuthorizationDecisionsTotal.WithLabelValues("allowed").Inc()
			c.Set(authContextKey, ac)

			if err := next(c, ac); err != nil {
				return guardError(err)
			}
			return nil
		}
	}
}

// AuthContextFrom returns the context stored by Guard, if any.
func AuthContextFrom(c echo.Context) (domain.AuthContext, bool) {
	ac, ok := c.Get(authContextKey).(domain.AuthContext)
	return ac, ok
}

func (a *Authorizer) deny(c echo.Context, ac domain.AuthContext, err error) {
	outcome := denyOutcome(err)
	metrics.AuthorizationDecisionsTotal.WithLabelValues(outcome).Inc()

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	a.log.Info().
		Str("outcome", outcome).
		Str("path", c.Path()).
		Str("user_id", ac.UserID).
		Str("request_id", requestID).
		Err(err).
		Msg("access denied")

	if a.audit == nil {
		return
	}
	a.audit.Record(domain.AuditEvent{
		Type:      domain.AuditAccessDenied,
		Username:  ac.Username,
		UserID:    ac.UserID,
		Reason:    err.Error(),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	})
}

func denyOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

func guardError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status, msg, ok := Resolve(err)
	if !ok {
		status, msg = http.StatusBadRequest, err.Error()
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}
