package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/repositories"
)

// Claims are custom claims extending standard jwt.RegisteredClaims.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver issues and verifies HMAC-signed bearer tokens and resolves them
// against the user store.
type JWTResolver struct {
	secret   []byte
	tokenTTL time.Duration
	users    repositories.UserRepository
}

// NewJWTResolver creates a JWTResolver.
func NewJWTResolver(secret string, tokenTTL time.Duration, users repositories.UserRepository) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), tokenTTL: tokenTTL, users: users}
}

// IssueToken signs a token for the given user.
func (r *JWTResolver) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "failed to sign token", err)
	}
	return signed, nil
}

// Resolve verifies the token and loads the user it belongs to, so handlers see
// the user's current profile rather than stale claims.
func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (CurrentUser, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.New(apperrors.Unauthorized, "unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return CurrentUser{}, apperrors.Wrap(apperrors.Unauthorized, "invalid token", err)
	}

	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return CurrentUser{}, apperrors.Wrap(apperrors.Unauthorized, "invalid token", err)
	}

	return CurrentUser{
		ID:             user.ID.Hex(),
		Username:       user.Username,
		Role:           user.Role,
		ProfilePicture: user.ProfilePicture,
	}, nil
}
