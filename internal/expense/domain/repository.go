package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository holds the aggregate reads used by the financial summary.
// Record CRUD goes through the generic store.
type Repository interface {
	OpexAmounts(ctx context.Context, db *gorm.DB, buildingID snowflake.ID, year, month int) ([]decimal.Decimal, error)
	DepreciableAssets(ctx context.Context, db *gorm.DB, buildingID snowflake.ID) ([]AssetLog, error)
}
