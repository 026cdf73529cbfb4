package repository

import (
	"context"

	"github.com/smallbiznis/rentbook/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for simple aggregates.
// Find and FindOne use the non-zero fields of query as equality filters;
// FindOne returns nil, nil when nothing matches.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID int64, fields map[string]any) error
	Delete(ctx context.Context, resourceID int64) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}
