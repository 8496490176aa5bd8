package repositories

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionRunner executes a function inside a store transaction when the
// store supports multi-document transactions. When it does not, the function
// runs as-is: sequential best-effort writes, with the documented residual risk
// that a crash leaves one side of a cross-document update applied.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTransactionRunner implements TransactionRunner over a mongo client. The
// supported flag comes from the capability probe at startup; no error-string
// matching happens here.
type MongoTransactionRunner struct {
	client    *mongo.Client
	supported bool
	logger    *slog.Logger
}

// NewMongoTransactionRunner creates a MongoTransactionRunner.
func NewMongoTransactionRunner(client *mongo.Client, supported bool, logger *slog.Logger) *MongoTransactionRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoTransactionRunner{client: client, supported: supported, logger: logger}
}

// WithTransaction runs fn transactionally when possible, sequentially otherwise.
func (r *MongoTransactionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.supported || r.client == nil {
		r.logger.Debug("store transactions unavailable, running sequentially")
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// SequentialRunner is a TransactionRunner that always runs the function
// directly. Used in tests and for stores without sessions.
type SequentialRunner struct{}

// WithTransaction runs fn directly.
func (SequentialRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
