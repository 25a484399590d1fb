package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/pkg/metrics"
)

var validate = validator.New()

// UserService implements account management on top of the credential store.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger, now: time.Now}
}

// CreateUser hashes the password, applies the default role when none is
// given, derives permissions from the role and stores an active account.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         role,
		Permissions:  domain.PermissionsFor(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	metrics.UsersCreatedTotal.WithLabelValues(string(role)).Inc()
	s.logger.Info().Str("user_id", id).Str("username", username).Str("role", string(role)).Msg("user created")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// UpdateUser applies a partial update. A role change recomputes the
// permission set unless the same update carries an explicit override.
// Tokens issued before the change keep their old claims until they expire.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if in.Email == nil && in.Role == nil && in.IsActive == nil && in.Permissions == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	update := ports.UserUpdate{
		Email:     in.Email,
		IsActive:  in.IsActive,
		UpdatedAt: s.now().UTC(),
	}

	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
	}

	if in.Permissions != nil && in.Role == nil {
		return nil, fmt.Errorf("%w: permissions can only be overridden together with a role", domain.ErrInvalidInput)
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, *in.Role)
		}
		update.Role = in.Role
		update.Permissions = domain.PermissionsFor(*in.Role)
		if in.Permissions != nil {
			update.Permissions = slices.Clone(in.Permissions)
		}
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, filter.Role)
	}
	return s.repo.FindAll(ctx, filter)
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}
	return nil
}
