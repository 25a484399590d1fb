package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/access-control/internal/core/domain"
	"github.com/99minutos/access-control/internal/core/ports"
)

// ProfileHandler serves routes available to any authenticated caller.
type ProfileHandler struct {
	users ports.UserService
}

func NewProfileHandler(users ports.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Profile returns the stored record of the caller alongside the grants the
// token carries, which may be older than the record.
//
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Profile(c echo.Context, ac domain.AuthContext) error {
	user, err := h.users.GetUser(c.Request().Context(), ac.UserID)
	if err != nil {
		return notFound(err)
	}

	resp := profileResponse{User: user, Permissions: ac.Permissions}
	if !ac.ExpiresAt.IsZero() {
		resp.ExpiresAt = &ac.ExpiresAt
	}
	return c.JSON(http.StatusOK, resp)
}

// Data is a sample resource readable by the user role and above.
//
// @Summary      Sample data
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/data [get]
func (h *ProfileHandler) Data(c echo.Context, ac domain.AuthContext) error {
	return c.JSON(http.StatusOK, dataResponse{
		Items:  []string{"data1", "data2", "data3"},
		UserID: ac.UserID,
	})
}
