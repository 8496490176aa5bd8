package auth

import (
	"context"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/repositories"
	"google.golang.org/api/option"
)

// FirebaseResolver verifies Firebase ID tokens and resolves them to users
// linked by firebase_uid. Selected with AUTH_PROVIDER=firebase.
type FirebaseResolver struct {
	client *firebaseauth.Client
	users  repositories.UserRepository
}

// InitFirebase initialises the Firebase app and returns its auth client.
func InitFirebase(ctx context.Context, credentialsPath string) (*firebaseauth.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

// NewFirebaseResolver creates a FirebaseResolver.
func NewFirebaseResolver(client *firebaseauth.Client, users repositories.UserRepository) *FirebaseResolver {
	return &FirebaseResolver{client: client, users: users}
}

// Resolve verifies the ID token and loads the linked user.
func (r *FirebaseResolver) Resolve(ctx context.Context, tokenString string) (CurrentUser, error) {
	token, err := r.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return CurrentUser{}, apperrors.Wrap(apperrors.Unauthorized, "invalid token", err)
	}

	user, err := r.users.GetUserByFirebaseUID(ctx, token.UID)
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
