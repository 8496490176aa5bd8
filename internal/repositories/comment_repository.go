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

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB.
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository.
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment inserts a new comment document.
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create comment", err)
	}
	return nil
}

// GetCommentByID retrieves a comment by hex id.
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := parseObjectID(id, "comment")
	if err != nil {
		return nil, err
	}
	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.New(apperrors.NotFound, "comment not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load comment", err)
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves a post's comments, newest first.
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load comments", err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode comments", err)
	}
	return comments, nil
}

// DeleteComment deletes a comment by hex id.
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "comment")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to delete comment", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.NotFound, "comment not found")
	}
	return nil
}

// DeleteCommentsByPostID removes every comment of a post and reports how many
// were deleted. Used when the post itself is deleted.
func (r *MongoCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, "failed to delete comments", err)
	}
	return res.DeletedCount, nil
}
