package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	"gorm.io/gorm"
)

// usageTables maps a category type to the ledger that references it.
var usageTables = map[categorydomain.CategoryType]string{
	categorydomain.TypeOpex:  "opex_logs",
	categorydomain.TypeSetup: "setup_costs",
	categorydomain.TypeCapex: "asset_logs",
}

type repo struct{}

func Provide() categorydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *categorydomain.ExpenseCategory) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO expense_categories (id, type, code, label, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Type,
		c.Code,
		c.Label,
		c.SortOrder,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *categorydomain.ExpenseCategory) error {
	return db.WithContext(ctx).Exec(
		`UPDATE expense_categories SET label = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		c.Label,
		c.SortOrder,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM expense_categories WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*categorydomain.ExpenseCategory, error) {
	var item categorydomain.ExpenseCategory
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, code, label, sort_order, created_at, updated_at
		 FROM expense_categories WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, categoryType categorydomain.CategoryType, code string) (*categorydomain.ExpenseCategory, error) {
	var item categorydomain.ExpenseCategory
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, code, label, sort_order, created_at, updated_at
		 FROM expense_categories WHERE type = ? AND code = ?`,
		categoryType,
		code,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByType(ctx context.Context, db *gorm.DB, categoryType categorydomain.CategoryType) ([]categorydomain.ExpenseCategory, error) {
	var items []categorydomain.ExpenseCategory
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, code, label, sort_order, created_at, updated_at
		 FROM expense_categories WHERE type = ? ORDER BY sort_order ASC, code ASC`,
		categoryType,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MaxSortOrder(ctx context.Context, db *gorm.DB, categoryType categorydomain.CategoryType) (int, bool, error) {
	var maxOrder sql.NullInt64
	err := db.WithContext(ctx).Raw(
		`SELECT MAX(sort_order) FROM expense_categories WHERE type = ?`,
		categoryType,
	).Scan(&maxOrder).Error
	if err != nil {
		return 0, false, err
	}
	return int(maxOrder.Int64), maxOrder.Valid, nil
}

func (r *repo) CountUsage(ctx context.Context, db *gorm.DB, categoryType categorydomain.CategoryType, code string) (int64, error) {
	table, ok := usageTables[categoryType]
	if !ok {
		return 0, categorydomain.ErrInvalidType
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE category = ?`, table),
		code,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
