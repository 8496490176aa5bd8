package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/auth"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  repositories.UserRepository
	tokens *auth.JWTResolver
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *auth.JWTResolver) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterAuthRoutes registers authentication routes on the group.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.Signin)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup registers a local account.
func (h *AuthHandler) Signup(c echo.Context) error {
	req := new(models.SignupRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Role:           models.RoleUser,
	}
	if err := h.users.CreateUser(c.Request().Context(), user); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Signin verifies credentials and issues a bearer token.
func (h *AuthHandler) Signin(c echo.Context) error {
	req := new(models.SigninRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.users.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		// NotFound collapses to the same 401 as a bad password.
		if apperrors.KindOf(err) == apperrors.NotFound {
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		return toHTTPError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
