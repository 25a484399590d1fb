package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
	"github.com/99minutos/access-control/internal/infrastructure/security"
)

func newTestUserService() (*UserService, *stubUserRepo) {
	repo := newStubUserRepo()
	return NewUserService(repo, security.NewBcryptHasher(bcrypt.MinCost), zerolog.Nop()), repo
}

func TestUserService_CreateUser_Defaults(t *testing.T) {
	svc, _ := newTestUserService()

	u, err := svc.CreateUser(context.Background(), ports.CreateUserInput{
		Username: "  alice ",
		Email:    "alice@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected ID to be set")
	}
	if u.Username != "alice" {
		t.Errorf("expected trimmed username, got %q", u.Username)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected default role user, got %s", u.Role)
	}
	if !slices.Equal(u.Permissions, []string{"read:data", "write:data"}) {
		t.Errorf("unexpected permissions: %v", u.Permissions)
	}
	if !u.IsActive {
		t.Errorf("new accounts must be active")
	}
	if u.PasswordHash == "" || u.PasswordHash == "pw" {
		t.Errorf("password must be stored as a digest")
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      ports.CreateUserInput
		wantErr error
	}{
		{"missing username", ports.CreateUserInput{Email: "a@b.io", Password: "pw"}, domain.ErrInvalidInput},
		{"bad email", ports.CreateUserInput{Username: "a", Email: "not-an-email", Password: "pw"}, domain.ErrInvalidInput},
		{"unknown role", ports.CreateUserInput{Username: "a", Email: "a@b.io", Password: "pw", Role: "root"}, domain.ErrInvalidRole},
		{"empty password", ports.CreateUserInput{Username: "a", Email: "a@b.io"}, domain.ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUserService()
			if _, err := svc.CreateUser(context.Background(), tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	svc, _ := newTestUserService()
	in := ports.CreateUserInput{Username: "bob", Email: "bob@example.com", Password: "pw"}

	if _, err := svc.CreateUser(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_UpdateUser_RoleRecomputesPermissions(t *testing.T) {
	svc, _ := newTestUserService()
	u, _ := svc.CreateUser(context.Background(), ports.CreateUserInput{Username: "c", Email: "c@example.com", Password: "pw"})

	guest := domain.RoleGuest
	updated, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{Role: &guest})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != domain.RoleGuest || !slices.Equal(updated.Permissions, []string{"read:data"}) {
		t.Fatalf("unexpected user after role change: %+v", updated)
	}
}

func TestUserService_UpdateUser_PermissionOverride(t *testing.T) {
	svc, _ := newTestUserService()
	u, _ := svc.CreateUser(context.Background(), ports.CreateUserInput{Username: "d", Email: "d@example.com", Password: "pw"})

	admin := domain.RoleAdmin
	updated, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{
		Role:        &admin,
		Permissions: []string{"read:users"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !slices.Equal(updated.Permissions, []string{"read:users"}) {
		t.Fatalf("override should win over role defaults, got %v", updated.Permissions)
	}

	if _, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{Permissions: []string{"x"}}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("permissions without role should be rejected, got %v", err)
	}
}

func TestUserService_UpdateUser_Errors(t *testing.T) {
	svc, _ := newTestUserService()
	u, _ := svc.CreateUser(context.Background(), ports.CreateUserInput{Username: "e", Email: "e@example.com", Password: "pw"})

	if _, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty update: expected ErrInvalidInput, got %v", err)
	}

	bad := domain.Role("superuser")
	if _, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{Role: &bad}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Errorf("bad role: expected ErrInvalidRole, got %v", err)
	}

	email := "broken"
	if _, err := svc.UpdateUser(context.Background(), u.ID, ports.UpdateUserInput{Email: &email}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad email: expected ErrInvalidInput, got %v", err)
	}

	active := true
	if _, err := svc.UpdateUser(context.Background(), "missing", ports.UpdateUserInput{IsActive: &active}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("missing user: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, _ := newTestUserService()
	u, _ := svc.CreateUser(context.Background(), ports.CreateUserInput{Username: "f", Email: "f@example.com", Password: "pw"})

	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	if err := svc.DeleteUser(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("second delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ListUsers(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	a, _ := svc.CreateUser(ctx, ports.CreateUserInput{Username: "g", Email: "g@example.com", Password: "pw"})
	svc.CreateUser(ctx, ports.CreateUserInput{Username: "h", Email: "h@example.com", Password: "pw", Role: domain.RoleAdmin})

	inactive := false
	if _, err := svc.UpdateUser(ctx, a.ID, ports.UpdateUserInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	all, err := svc.ListUsers(ctx, ports.UserFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 users, got %d (err=%v)", len(all), err)
	}

	active, _ := svc.ListUsers(ctx, ports.UserFilter{ActiveOnly: true})
	if len(active) != 1 || active[0].Username != "h" {
		t.Fatalf("expected only h to be active, got %+v", active)
	}

	admins, _ := svc.ListUsers(ctx, ports.UserFilter{Role: domain.RoleAdmin})
	if len(admins) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(admins))
	}

	if _, err := svc.ListUsers(ctx, ports.UserFilter{Role: "root"}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_GetUserByUsernameAndEmail(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()
	u, _ := svc.CreateUser(ctx, ports.CreateUserInput{Username: "ivy", Email: "ivy@example.com", Password: "pw"})

	byName, err := svc.GetUserByUsername(ctx, "ivy")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("by username: got %+v (err=%v)", byName, err)
	}
	byEmail, err := svc.GetUserByEmail(ctx, "ivy@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("by email: got %+v (err=%v)", byEmail, err)
	}
	if _, err := svc.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
