package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

var adminCtx = domain.AuthContext{
	UserID:      "admin1",
	Username:    "root",
	Role:        domain.RoleAdmin,
	Permissions: domain.PermissionsFor(domain.RoleAdmin),
}

func TestUserHandler_List(t *testing.T) {
	e := newEcho()
	var got ports.UserFilter
	svc := &stubUserService{
		listFn: func(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
			got = f
			return []*domain.User{{ID: "u1", Username: "a"}, {ID: "u2", Username: "b"}}, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users?role=guest", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c, adminCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !got.ActiveOnly || got.Role != domain.RoleGuest {
		t.Fatalf("unexpected filter: %+v", got)
	}

	var resp userListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Users) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_List_IncludeInactive(t *testing.T) {
	e := newEcho()
	var got ports.UserFilter
	svc := &stubUserService{
		listFn: func(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
			got = f
			return nil, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users?include_inactive=true", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.List(c, adminCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.ActiveOnly {
		t.Fatalf("expected inactive users to be included")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users?include_inactive=maybe", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if code := httpCode(t, h.List(c, adminCtx)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestUserHandler_Create(t *testing.T) {
	e := newEcho()
	svc := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			if in.Role != domain.RoleGuest {
				t.Fatalf("expected guest role, got %s", in.Role)
			}
			return &domain.User{ID: "u9", Username: in.Username, Role: in.Role, Permissions: domain.PermissionsFor(in.Role)}, nil
		},
	}
	h := NewUserHandler(svc)

	c, rec := jsonRequest(e, http.MethodPost, "/api/users",
		`{"username":"gary","email":"g@example.com","password":"long-enough","role":"guest"}`)
	if err := h.Create(c, adminCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/api/users",
		`{"username":"gary","email":"g@example.com","password":"long-enough","role":"root"}`)
	if err := h.Create(c, adminCtx); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	e := newEcho()
	svc := &stubUserService{
		updateFn: func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if id != "u1" {
				return nil, domain.ErrUserNotFound
			}
			if in.Role == nil || *in.Role != domain.RoleAdmin || in.IsActive != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: id, Role: *in.Role, Permissions: domain.PermissionsFor(*in.Role)}, nil
		},
	}
	h := NewUserHandler(svc)

	c, rec := jsonRequest(e, http.MethodPatch, "/api/users/u1", `{"role":"admin"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := h.Update(c, adminCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonRequest(e, http.MethodPatch, "/api/users/u404", `{"role":"admin"}`)
	c.SetParamNames("id")
	c.SetParamValues("u404")
	if code := httpCode(t, h.Update(c, adminCtx)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newEcho()
	svc := &stubUserService{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "u1" {
				return nil
			}
			return domain.ErrUserNotFound
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := h.Delete(c, adminCtx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/users/u2", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if code := httpCode(t, h.Delete(c, adminCtx)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestUserHandler_StoreErrorPassesThrough(t *testing.T) {
	e := newEcho()
	svc := &stubUserService{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrStoreUnavailable
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := h.Delete(c, adminCtx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestUserHandler_List_UnknownRole(t *testing.T) {
	e := newEcho()
	svc := &stubUserService{
		listFn: func(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
			t.Fatalf("service must not be called for an unknown role")
			return nil, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users?role=superuser", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.List(c, adminCtx); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserHandler_Lookup(t *testing.T) {
	e := newEcho()
	var field, value string
	svc := &stubUserService{
		lookupFn: func(f, v string) (*domain.User, error) {
			field, value = f, v
			if v == "missing" || v == "missing@example.com" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "u7", Username: "hank", Email: "hank@example.com", Role: domain.RoleUser}, nil
		},
	}
	h := NewUserHandler(svc)

	tests := []struct {
		name      string
		query     string
		wantField string
		wantValue string
	}{
		{"by username", "username=hank", "username", "hank"},
		{"by email", "email=hank%40example.com", "email", "hank@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/lookup?"+tt.query, nil)
			rec := httptest.NewRecorder()
			if err := h.Lookup(e.NewContext(req, rec), adminCtx); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK || field != tt.wantField || value != tt.wantValue {
				t.Fatalf("got %d via %s=%q", rec.Code, field, value)
			}
			var u domain.User
			if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil || u.ID != "u7" {
				t.Fatalf("unexpected body %s (err=%v)", rec.Body.String(), err)
			}
		})
	}

	for _, q := range []string{"", "username=hank&email=hank%40example.com"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/lookup?"+q, nil)
		if err := h.Lookup(e.NewContext(req, httptest.NewRecorder()), adminCtx); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("query %q: expected ErrInvalidInput, got %v", q, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/lookup?email=missing%40example.com", nil)
	if code := httpCode(t, h.Lookup(e.NewContext(req, httptest.NewRecorder()), adminCtx)); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
