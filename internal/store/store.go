package store

import (
	"context"
	"errors"

	"sms-relay/internal/model"
)

var ErrUnavailable = errors.New("subscriber store unavailable")

// Store is the durable subscriber collection, keyed by phone number.
//
// Create and Delete are conditional: Create only inserts when the number is
// not present and reports whether it did, Delete reports whether a record was
// actually removed. That makes the subscribe/unsubscribe decision a single
// atomic store operation instead of a racy read-then-write.
type Store interface {
	Create(ctx context.Context, sub model.Subscriber) (created bool, err error)
	Delete(ctx context.Context, phoneNumber string) (existed bool, err error)
	Exists(ctx context.Context, phoneNumber string) (bool, error)
	All(ctx context.Context) ([]model.Subscriber, error)
	Count(ctx context.Context) (int, error)
}
