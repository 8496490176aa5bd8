package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/services"
)

// FriendshipHandler exposes the friend-request lifecycle.
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler.
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship routes on the authenticated group.
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/request/:user_id", h.SendRequest)
	g.POST("/accept/:user_id", h.AcceptRequest)
	g.POST("/reject/:user_id", h.RejectRequest)
	g.GET("", h.ListFriends)
	g.GET("/requests", h.ListPendingRequests)
}

// SendRequest sends a friend request to the user in the path.
func (h *FriendshipHandler) SendRequest(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	relationships, err := h.friendships.SendRequest(c.Request().Context(), currentUser.ID, c.Param("user_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"relationships": relationships})
}

// AcceptRequest accepts a pending friend request from the user in the path.
func (h *FriendshipHandler) AcceptRequest(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	relationships, err := h.friendships.AcceptRequest(c.Request().Context(), currentUser.ID, c.Param("user_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"relationships": relationships})
}

// RejectRequest rejects a pending friend request from the user in the path.
func (h *FriendshipHandler) RejectRequest(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	relationships, err := h.friendships.RejectRequest(c.Request().Context(), currentUser.ID, c.Param("user_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"relationships": relationships})
}

// ListFriends returns the authenticated user's friends.
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	friends, err := h.friendships.ListFriends(c.Request().Context(), currentUser.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, friends)
}

// ListPendingRequests returns the users waiting on an answer from the
// authenticated user.
func (h *FriendshipHandler) ListPendingRequests(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	pending, err := h.friendships.ListPendingRequests(c.Request().Context(), currentUser.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pending)
}
