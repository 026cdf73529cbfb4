package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, category *ExpenseCategory) error
	Update(ctx context.Context, db *gorm.DB, category *ExpenseCategory) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ExpenseCategory, error)
	FindByCode(ctx context.Context, db *gorm.DB, categoryType CategoryType, code string) (*ExpenseCategory, error)
	ListByType(ctx context.Context, db *gorm.DB, categoryType CategoryType) ([]ExpenseCategory, error)
	MaxSortOrder(ctx context.Context, db *gorm.DB, categoryType CategoryType) (int, bool, error)
	// CountUsage counts ledger rows of the matching ledger that carry code.
	CountUsage(ctx context.Context, db *gorm.DB, categoryType CategoryType, code string) (int64, error)
}
