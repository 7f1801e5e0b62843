// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a MongoDB multi-document transaction.
//
// fn receives the session context and must use it for every operation that
// should be part of the transaction. On deployments without transaction
// support (a standalone mongod) fn is run once without a transaction and a
// warning is logged; callers that need all-or-nothing behaviour there must
// compensate themselves.
func Run(ctx context.Context, db *mongo.Database, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warn("transactions unavailable; running without", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("transactions unavailable; running without", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// notSupportedCodes are server error codes returned when the deployment
// cannot run transactions (IllegalOperation, ...).
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: transaction numbers only on replica sets
	51:  true, // IllegalOperation (legacy)
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means transactions are unavailable.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if notSupportedCodes[cmdErr.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case hasTxn && strings.Contains(msg, "illegal operation"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}
