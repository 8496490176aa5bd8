package repositories

import (
	"context"

	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations, including the
// relationship map stored on each user document.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	SetRelationship(ctx context.Context, userID, otherID string, state models.RelationshipState) error
	UnsetRelationship(ctx context.Context, userID, otherID string) error
}

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// parseObjectID converts a hex id into an ObjectID, classifying a malformed id
// as invalid input rather than not-found.
func parseObjectID(id, what string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Wrap(apperrors.InvalidInput, "invalid "+what+" id", err)
	}
	return objID, nil
}

// CreateUser inserts a new user document.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Wrap(apperrors.Conflict, "username or email already taken", err)
		}
		return apperrors.Wrap(apperrors.Internal, "failed to create user", err)
	}
	return nil
}

// GetUserByID retrieves a user by hex id.
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := parseObjectID(id, "user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetUserByUsername retrieves a user by username.
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByEmail retrieves a user by email.
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByFirebaseUID retrieves a user by its linked Firebase UID.
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.New(apperrors.NotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load user", err)
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users matching the given hex ids. Unknown ids
// are silently skipped.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := parseObjectID(id, "user")
		if err != nil {
			return nil, err
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return []models.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode users", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of the request and returns the
// updated document.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	objID, err := parseObjectID(id, "user")
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		set["profile_picture"] = *req.ProfilePicture
	}
	if req.CoverPhoto != nil {
		set["cover_photo"] = *req.CoverPhoto
	}
	if len(set) == 0 {
		return r.findOne(ctx, bson.M{"_id": objID})
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to update profile", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.New(apperrors.NotFound, "user not found")
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// SetRelationship writes one side of a relationship pair as a single-document
// atomic update on relationships.<otherID>.
func (r *MongoUserRepository) SetRelationship(ctx context.Context, userID, otherID string, state models.RelationshipState) error {
	objID, err := parseObjectID(userID, "user")
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"relationships." + otherID: state}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to update relationship", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	return nil
}

// UnsetRelationship removes one side of a relationship pair.
func (r *MongoUserRepository) UnsetRelationship(ctx context.Context, userID, otherID string) error {
	objID, err := parseObjectID(userID, "user")
	if err != nil {
		return err
	}
	update := bson.M{"$unset": bson.M{"relationships." + otherID: ""}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to update relationship", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	return nil
}
