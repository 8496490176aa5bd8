package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
)

// UserHandler handles profile reads and updates.
type UserHandler struct {
	users       repositories.UserRepository
	broadcaster *realtime.Broadcaster
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users repositories.UserRepository, broadcaster *realtime.Broadcaster) *UserHandler {
	return &UserHandler{users: users, broadcaster: broadcaster}
}

// RegisterUserRoutes registers user routes on the authenticated group.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/me", h.GetMe)
	g.PATCH("/me", h.UpdateMe)
	g.GET("/:user_id", h.GetUserByID)
}

// GetMe returns the authenticated user's full profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.Request().Context(), currentUser.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update and announces it to every
// connected personal stream.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	req := new(models.UpdateUserRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), currentUser.ID, req)
	if err != nil {
		return toHTTPError(err)
	}

	h.broadcaster.BroadcastToAllUsers(realtime.Event{
		Name: realtime.EventProfileUpdated,
		Data: map[string]any{
			"user_id":         user.HexID(),
			"username":        user.Username,
			"bio":             user.Bio,
			"profile_picture": user.ProfilePicture,
			"cover_photo":     user.CoverPhoto,
		},
	})
	return c.JSON(http.StatusOK, user)
}

// GetUserByID returns a user's public profile.
func (h *UserHandler) GetUserByID(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}
