package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoreCapabilities records what the connected store can do, probed once at
// startup. Code elsewhere branches on these flags instead of sniffing error
// messages at runtime.
type StoreCapabilities struct {
	// Transactions is true when the deployment supports multi-document
	// transactions (replica set or sharded cluster).
	Transactions bool
}

// DB holds the database connection and its probed capabilities.
type DB struct {
	Client       *mongo.Client
	Database     *mongo.Database
	Capabilities StoreCapabilities
}

// InitDB initialises the MongoDB connection and probes its capabilities.
func InitDB(cfg *Config) (*DB, error) {
	// Load environment variables from .env file when present.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, assuming environment variables are set")
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	capabilities := detectCapabilities(ctx, client)
	slog.Info("connected to MongoDB", "transactions", capabilities.Transactions)

	return &DB{
		Client:       client,
		Database:     client.Database(cfg.MongoDBName),
		Capabilities: capabilities,
	}, nil
}

// detectCapabilities asks the server what kind of deployment it is. A replica
// set reports setName, a mongos reports msg=isdbgrid; both support
// multi-document transactions. A standalone supports neither.
func detectCapabilities(ctx context.Context, client *mongo.Client) StoreCapabilities {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		slog.Warn("capability probe failed, assuming no transaction support", "error", err)
		return StoreCapabilities{}
	}
	return StoreCapabilities{
		Transactions: hello.SetName != "" || hello.Msg == "isdbgrid",
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	users := db.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "firebase_uid", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	posts := db.Database.Collection("posts")
	postIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := posts.Indexes().CreateMany(ctx, postIndexes); err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}

	comments := db.Database.Collection("comments")
	commentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := comments.Indexes().CreateMany(ctx, commentIndexes); err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}

	notifications := db.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "post_id", Value: 1}}},
	}
	if _, err := notifications.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	return nil
}

// CloseDB closes the database connection.
func (db *DB) CloseDB() {
	if db.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client.Disconnect(ctx); err != nil {
		slog.Error("error closing MongoDB connection", "error", err)
		return
	}
	slog.Info("MongoDB connection closed")
}
