package db

import (
	"context"

	"github.com/ukydev/city-traffic/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccidentCollection defines the interface for accident journal operations.
type AccidentCollection interface {
	StoreAccident(ctx context.Context, rec models.AccidentRecord) error
	FindAccidents(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (AccidentCursor, error)
}

// AccidentCursor defines the interface for accident cursor operations.
type AccidentCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
