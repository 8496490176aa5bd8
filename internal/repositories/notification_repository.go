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

// NotificationRepository defines the interface for notification operations.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, limit int64, unreadOnly bool) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkManyAsRead(ctx context.Context, recipientID string, ids []string) (int64, error)
	DeleteByPostID(ctx context.Context, postID string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB.
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository.
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification inserts a new notification document.
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return apperrors.Wrap(apperrors.Internal, "failed to create notification", err)
	}
	return nil
}

// GetByRecipientID retrieves a recipient's notifications, newest first,
// optionally only the unread ones.
func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, limit int64, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": recipientID}
	if unreadOnly {
		filter["read"] = false
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to load notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to decode notifications", err)
	}
	return notifications, nil
}

// GetUnreadCount counts the recipient's unread notifications.
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": recipientID, "read": false})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, "failed to count notifications", err)
	}
	return count, nil
}

// MarkManyAsRead marks the given notifications as read, recording the read
// time. The recipient filter guarantees callers can only touch their own.
func (r *MongoNotificationRepository) MarkManyAsRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := parseObjectID(id, "notification")
		if err != nil {
			return 0, err
		}
		objIDs = append(objIDs, objID)
	}

	filter := bson.M{"_id": bson.M{"$in": objIDs}, "user_id": recipientID}
	update := bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, "failed to mark notifications as read", err)
	}
	return res.ModifiedCount, nil
}

// DeleteByPostID removes every notification referencing a post. Called when
// the post is deleted; this is the only deletion path for notifications.
func (r *MongoNotificationRepository) DeleteByPostID(ctx context.Context, postID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, "failed to delete notifications", err)
	}
	return res.DeletedCount, nil
}
