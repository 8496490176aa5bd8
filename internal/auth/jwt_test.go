package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// singleUserRepo resolves exactly one user by id.
type singleUserRepo struct {
	user *models.User
}

func (r singleUserRepo) CreateUser(context.Context, *models.User) error { return nil }

func (r singleUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if r.user != nil && r.user.ID.Hex() == id {
		return r.user, nil
	}
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (r singleUserRepo) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (r singleUserRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (r singleUserRepo) GetUserByFirebaseUID(context.Context, string) (*models.User, error) {
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (r singleUserRepo) GetUsersByIDs(context.Context, []string) ([]models.User, error) {
	return nil, nil
}

func (r singleUserRepo) UpdateProfile(context.Context, string, *models.UpdateUserRequest) (*models.User, error) {
	return nil, apperrors.New(apperrors.NotFound, "user not found")
}

func (r singleUserRepo) SetRelationship(context.Context, string, string, models.RelationshipState) error {
	return nil
}

func (r singleUserRepo) UnsetRelationship(context.Context, string, string) error { return nil }

func TestIssueAndResolveRoundTrip(t *testing.T) {
	user := &models.User{
		ID:             primitive.NewObjectID(),
		Username:       "alice",
		Role:           models.RoleUser,
		ProfilePicture: "/uploads/a.png",
	}
	resolver := NewJWTResolver("test-secret", time.Hour, singleUserRepo{user: user})

	token, err := resolver.IssueToken(user)
	require.NoError(t, err)

	current, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), current.ID)
	assert.Equal(t, "alice", current.Username)
	assert.Equal(t, models.RoleUser, current.Role)
	assert.Equal(t, "/uploads/a.png", current.ProfilePicture)
}

func TestResolveRejectsGarbageToken(t *testing.T) {
	resolver := NewJWTResolver("test-secret", time.Hour, singleUserRepo{})

	_, err := resolver.Resolve(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}

func TestResolveRejectsTokenSignedWithOtherSecret(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "alice", Role: models.RoleUser}
	issuer := NewJWTResolver("secret-a", time.Hour, singleUserRepo{user: user})
	verifier := NewJWTResolver("secret-b", time.Hour, singleUserRepo{user: user})

	token, err := issuer.IssueToken(user)
	require.NoError(t, err)

	_, err = verifier.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}

func TestResolveRejectsTokenForDeletedUser(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "alice", Role: models.RoleUser}
	resolver := NewJWTResolver("test-secret", time.Hour, singleUserRepo{user: user})

	token, err := resolver.IssueToken(user)
	require.NoError(t, err)

	// Same secret, but the user is gone from the store.
	emptied := NewJWTResolver("test-secret", time.Hour, singleUserRepo{})
	_, err = emptied.Resolve(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}
