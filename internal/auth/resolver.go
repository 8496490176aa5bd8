package auth

import (
	"context"

	"github.com/urbano-social/backend/internal/models"
)

// CurrentUser is the authenticated principal, resolved exactly once at the
// request boundary and passed to handlers as a value.
type CurrentUser struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Role           models.UserRole `json:"role"`
	ProfilePicture string          `json:"profile_picture,omitempty"`
}

// TokenResolver verifies a bearer credential and resolves it to the user it
// belongs to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (CurrentUser, error)
}
