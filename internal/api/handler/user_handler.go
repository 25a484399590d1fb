package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// UserHandler serves the admin user-management routes. Every method is a
// guarded handler and receives the caller's AuthContext.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns active users unless include_inactive=true.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role              query     string  false  "Filter by role"  Enums(admin, user, guest)
// @Param        include_inactive  query     bool    false  "Include deactivated accounts"
// @Success      200  {object}  userListResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context, _ domain.AuthContext) error {
	filter := ports.UserFilter{ActiveOnly: true}
	if raw := c.QueryParam("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return err
		}
		filter.Role = role
	}
	if raw := c.QueryParam("include_inactive"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "include_inactive must be a boolean")
		}
		filter.ActiveOnly = !include
	}

	users, err := h.service.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users, Count: len(users)})
}

// Lookup finds one account by exact username or email. Exactly one of the
// two query parameters must be set.
//
// @Summary      Look up a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  false  "Exact username"
// @Param        email     query     string  false  "Exact email"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/lookup [get]
func (h *UserHandler) Lookup(c echo.Context, _ domain.AuthContext) error {
	username, email := c.QueryParam("username"), c.QueryParam("email")

	var (
		user *domain.User
		err  error
	)
	switch {
	case username != "" && email == "":
		user, err = h.service.GetUserByUsername(c.Request().Context(), username)
	case email != "" && username == "":
		user, err = h.service.GetUserByEmail(c.Request().Context(), email)
	default:
		return fmt.Errorf("%w: set exactly one of username or email", domain.ErrInvalidInput)
	}
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Create adds an account with any role.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context, _ domain.AuthContext) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return err
		}
		in.Role = role
	}

	user, err := h.service.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update applies a partial update. Tokens already issued to the user keep
// their old role and permissions until they expire.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) Update(c echo.Context, _ domain.AuthContext) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.UpdateUserInput{
		Email:       req.Email,
		Permissions: req.Permissions,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return err
		}
		in.Role = &role
	}

	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return notFound(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes an account.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context, _ domain.AuthContext) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return notFound(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// notFound renders a missing target record as 404; on these routes the
// record is the object of the request, not the caller's identity.
func notFound(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found").SetInternal(err)
	}
	return err
}
