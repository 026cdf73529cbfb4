package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() expensedomain.Repository {
	return &repo{}
}

// OpexAmounts returns the raw amounts so the sum stays in decimal arithmetic.
func (r *repo) OpexAmounts(ctx context.Context, db *gorm.DB, buildingID snowflake.ID, year, month int) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := db.WithContext(ctx).Raw(
		`SELECT amount FROM opex_logs WHERE building_id = ? AND year = ? AND month = ?`,
		buildingID,
		year,
		month,
	).Scan(&amounts).Error
	if err != nil {
		return nil, err
	}
	return amounts, nil
}

func (r *repo) DepreciableAssets(ctx context.Context, db *gorm.DB, buildingID snowflake.ID) ([]expensedomain.AssetLog, error) {
	var items []expensedomain.AssetLog
	err := db.WithContext(ctx).Raw(
		`SELECT id, building_id, item_name, amount, category, purchase_date, is_depreciable,
		        depreciation_months, invoice_url, created_at, updated_at
		 FROM asset_logs
		 WHERE building_id = ? AND is_depreciable = ? AND purchase_date IS NOT NULL
		   AND depreciation_months > 0`,
		buildingID,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
