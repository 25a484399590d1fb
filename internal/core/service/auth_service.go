package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/pkg/metrics"
)

const defaultTokenTTL = 24 * time.Hour

// AuthService implements login and the role/permission checks.
type AuthService struct {
	repo     ports.UserRepository
	codec    ports.TokenCodec
	hasher   ports.PasswordHasher
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	tokenTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthOptions carries the optional collaborators of AuthService.
type AuthOptions struct {
	Throttle ports.LoginThrottle
	Audit    ports.AuditRecorder
	TokenTTL time.Duration
}

func NewAuthService(
	repo ports.UserRepository,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:     repo,
		codec:    codec,
		hasher:   hasher,
		throttle: opts.Throttle,
		audit:    opts.Audit,
		tokenTTL: opts.TokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks credentials and issues a token carrying a snapshot of the
// user's current role and permissions.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, username)
		if err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
		} else if !allowed {
			s.fail(username, "", domain.ErrTooManyAttempts)
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same hashing time as a real check so response latency
			// does not reveal whether the account exists.
			s.hasher.Verify(password, s.dummyDigest())
			s.recordFailure(ctx, username)
			s.fail(username, "", domain.ErrUserNotFound)
		}
		return nil, err
	}

	if !user.IsActive {
		s.recordFailure(ctx, username)
		s.fail(username, user.ID, domain.ErrAccountInactive)
		return nil, domain.ErrAccountInactive
	}

	start := time.Now()
	ok := s.hasher.Verify(password, user.PasswordHash)
	metrics.PasswordVerifyDuration.Observe(time.Since(start).Seconds())
	if !ok {
		s.recordFailure(ctx, username)
		s.fail(username, user.ID, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.tokenTTL)
	token, err := s.codec.Encode(user.Claims(issuedAt, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.record(domain.AuditEvent{
		Type:     domain.AuditLoginSucceeded,
		Username: username,
		UserID:   user.ID,
	})
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// HasRole compares role levels using the access policy.
func (s *AuthService) HasRole(actual, required domain.Role) bool {
	return domain.HasRole(actual, required)
}

// HasPermission is an exact membership test.
func (s *AuthService) HasPermission(granted []string, required string) bool {
	return domain.HasPermission(granted, required)
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) fail(username, userID string, reason error) {
	metrics.LoginAttemptsTotal.WithLabelValues(failureLabel(reason)).Inc()
	s.record(domain.AuditEvent{
		Type:     domain.AuditLoginFailed,
		Username: username,
		UserID:   userID,
		Reason:   reason.Error(),
	})
	s.logger.Info().Str("username", username).Str("reason", reason.Error()).Msg("login failed")
}

func (s *AuthService) record(ev domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.Timestamp = s.now().UTC()
	s.audit.Record(ev)
}

// dummyDigest lazily hashes a throwaway password with the configured hasher.
func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("timing-equalizer-password")
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to build dummy digest")
			return
		}
		s.dummyHash = digest
	})
	return s.dummyHash
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "invalid_credentials"
	}
}
