package repositories

import (
	"context"
	"time"

	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageRepository defines the interface for image data operations.
type ImageRepository interface {
	CreateImage(ctx context.Context, image *models.Image) error
	GetImageByID(ctx context.Context, id string) (*models.Image, error)
	GetImagesByOwnerID(ctx context.Context, ownerID string, skip, limit int64) ([]models.Image, error)
	DeleteImage(ctx context.Context, id string) error
	AddLike(ctx context.Context, imageID, userID string) error
	RemoveLike(ctx context.Context, imageID, userID string) error
	CreateComment(ctx context.Context, comment *models.ImageComment) error
	GetCommentsByImageID(ctx context.Context, imageID string, skip, limit int64) ([]models.ImageComment, error)
	IncrementCommentsCount(ctx context.Context, imageID string) error
}

// MongoImageRepository implements ImageRepository for MongoDB. Image comments
// live in their own collection, like post comments do.
type MongoImageRepository struct {
	images   *mongo.Collection
	comments *mongo.Collection
}

// NewMongoImageRepository creates a new MongoImageRepository.
func NewMongoImageRepository(db *mongo.Database) *MongoImageRepository {
	return &MongoImageRepository{
		images:   db.Collection("images"),
		comments: db.Collection("image_comments"),
	}
}

// CreateImage inserts a new image document.
func (r *MongoImageRepository) CreateImage(ctx context.Context, image *models.Image) error {
	image.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	image.CreatedAt = now
	image.UpdatedAt = now
	if image.LikedBy == nil {
		image.LikedBy = []string{}
	}
	if _, err := r.images.InsertOne(ctx, image); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create image", err)
	}
	return nil
}

// GetImageByID retrieves an image by hex id.
func (r *MongoImageRepository) GetImageByID(ctx context.Context, id string) (*models.Image, error) {
	objID, err := parseObjectID(id, "image")
	if err != nil {
		return nil, err
	}
	var image models.Image
	err = r.images.FindOne(ctx, bson.M{"_id": objID}).Decode(&image)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.New(apperrors.NotFound, "image not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load image", err)
	}
	return &image, nil
}

// GetImagesByOwnerID retrieves a user's images, newest first.
func (r *MongoImageRepository) GetImagesByOwnerID(ctx context.Context, ownerID string, skip, limit int64) ([]models.Image, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.images.Find(ctx, bson.M{"owner_id": ownerID}, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load images", err)
	}
	defer cursor.Close(ctx)

	var images []models.Image
	if err = cursor.All(ctx, &images); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode images", err)
	}
	return images, nil
}

// DeleteImage deletes an image and its comments.
func (r *MongoImageRepository) DeleteImage(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "image")
	if err != nil {
		return err
	}
	res, err := r.images.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to delete image", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.NotFound, "image not found")
	}
	if _, err := r.comments.DeleteMany(ctx, bson.M{"image_id": id}); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to delete image comments", err)
	}
	return nil
}

// AddLike records a like as one atomic update; a double-like is a Conflict.
func (r *MongoImageRepository) AddLike(ctx context.Context, imageID, userID string) error {
	objID, err := parseObjectID(imageID, "image")
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "liked_by": bson.M{"$ne": userID}}
	update := bson.M{
		"$inc":  bson.M{"likes_count": 1},
		"$push": bson.M{"liked_by": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.images.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to like image", err)
	}
	if res.ModifiedCount == 0 {
		return apperrors.New(apperrors.Conflict, "image already liked")
	}
	return nil
}

// RemoveLike removes a like; unliking an image that was not liked is a Conflict.
func (r *MongoImageRepository) RemoveLike(ctx context.Context, imageID, userID string) error {
	objID, err := parseObjectID(imageID, "image")
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "liked_by": userID}
	update := bson.M{
		"$inc":  bson.M{"likes_count": -1},
		"$pull": bson.M{"liked_by": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.images.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to unlike image", err)
	}
	if res.ModifiedCount == 0 {
		return apperrors.New(apperrors.Conflict, "image not liked")
	}
	return nil
}

// CreateComment inserts a new image comment document.
func (r *MongoImageRepository) CreateComment(ctx context.Context, comment *models.ImageComment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create image comment", err)
	}
	return nil
}

// GetCommentsByImageID retrieves an image's comments, newest first.
func (r *MongoImageRepository) GetCommentsByImageID(ctx context.Context, imageID string, skip, limit int64) ([]models.ImageComment, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.comments.Find(ctx, bson.M{"image_id": imageID}, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load image comments", err)
	}
	defer cursor.Close(ctx)

	var comments []models.ImageComment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode image comments", err)
	}
	return comments, nil
}

// IncrementCommentsCount increments the comments counter of an image.
func (r *MongoImageRepository) IncrementCommentsCount(ctx context.Context, imageID string) error {
	objID, err := parseObjectID(imageID, "image")
	if err != nil {
		return err
	}
	update := bson.M{
		"$inc": bson.M{"comments_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := r.images.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to update comments count", err)
	}
	return nil
}
