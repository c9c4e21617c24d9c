package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout unless it is a session context, which
// must be passed through untouched to keep transaction semantics.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ObjectIDs converts hex ids, returning the parsed ids and the ones that failed.
func ObjectIDs(ids []string) ([]primitive.ObjectID, []string) {
	valid := make([]primitive.ObjectID, 0, len(ids))
	var invalid []string
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			invalid = append(invalid, id)
			continue
		}
		valid = append(valid, oid)
	}
	return valid, invalid
}
