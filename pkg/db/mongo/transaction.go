package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	apperrors "clubhouse/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// codeIllegalOperation is returned by a standalone mongod when a write carries
// a transaction number.
const codeIllegalOperation = 20

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
	inline atomic.Bool
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

// ExecuteTransaction runs fn in a session transaction. The driver retries fn
// on transient transaction errors, so fn must only touch the database.
//
// Local single-node servers reject transactions outright. The first such
// rejection switches the manager to running fn without a session.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	if m.inline.Load() {
		return InlineTransactionManager{}.ExecuteTransaction(ctx, fn)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	switch {
	case err == nil:
		return nil
	case transactionsUnsupported(err):
		m.inline.Store(true)
		return InlineTransactionManager{}.ExecuteTransaction(ctx, fn)
	case apperrors.IsAppError(err):
		return err
	default:
		return fmt.Errorf("transaction failed: %w", err)
	}
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeIllegalOperation
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == codeIllegalOperation {
				return true
			}
		}
	}
	return false
}

// InlineTransactionManager runs fn without a real session.
type InlineTransactionManager struct{}

func (InlineTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}
