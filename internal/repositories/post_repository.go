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

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementCommentsCount(ctx context.Context, postID string) error
	DecrementCommentsCount(ctx context.Context, postID string) error
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
}

// MongoPostRepository implements PostRepository for MongoDB.
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository.
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost inserts a new post document.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create post", err)
	}
	return nil
}

// GetPostByID retrieves a post by hex id.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return nil, err
	}
	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.New(apperrors.NotFound, "post not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load post", err)
	}
	return &post, nil
}

// GetPostsByAuthorID retrieves posts by a specific author, newest first.
func (r *MongoPostRepository) GetPostsByAuthorID(ctx context.Context, authorID string, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID}, skip, limit)
}

// GetAllPosts retrieves all posts with pagination, newest first.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load posts", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode posts", err)
	}
	return posts, nil
}

// UpdatePost applies the non-nil fields of the request and returns the updated
// document.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error) {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to update post", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.New(apperrors.NotFound, "post not found")
	}
	return r.GetPostByID(ctx, id)
}

// DeletePost deletes a post by hex id.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parseObjectID(id, "post")
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to delete post", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.NotFound, "post not found")
	}
	return nil
}

// IncrementCommentsCount increments the comments counter of a post.
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	return r.incCommentsCount(ctx, postID, 1)
}

// DecrementCommentsCount decrements the comments counter of a post.
func (r *MongoPostRepository) DecrementCommentsCount(ctx context.Context, postID string) error {
	return r.incCommentsCount(ctx, postID, -1)
}

func (r *MongoPostRepository) incCommentsCount(ctx context.Context, postID string, delta int) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": delta}})
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to update comments count", err)
	}
	return nil
}

// AddLike records a like as one atomic update. Filtering on liked_by makes a
// double-like from the same user a Conflict instead of a double count.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "liked_by": bson.M{"$ne": userID}}
	update := bson.M{
		"$inc":  bson.M{"likes_count": 1},
		"$push": bson.M{"liked_by": userID},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to like post", err)
	}
	if res.ModifiedCount == 0 {
		return apperrors.New(apperrors.Conflict, "post already liked")
	}
	return nil
}

// RemoveLike removes a like; unliking a post that was not liked is a Conflict.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	objID, err := parseObjectID(postID, "post")
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "liked_by": userID}
	update := bson.M{
		"$inc":  bson.M{"likes_count": -1},
		"$pull": bson.M{"liked_by": userID},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to unlike post", err)
	}
	if res.ModifiedCount == 0 {
		return apperrors.New(apperrors.Conflict, "post not liked")
	}
	return nil
}
