package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() leasedomain.TenantRepository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *leasedomain.Tenant) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, t *leasedomain.Tenant) error {
	return db.WithContext(ctx).Model(&leasedomain.Tenant{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"full_name":          t.FullName,
			"id_number":          t.IDNumber,
			"id_card_front_path": t.IDCardFrontPath,
			"id_card_back_path":  t.IDCardBackPath,
			"residence_status":   t.ResidenceStatus,
			"is_locked":          t.IsLocked,
			"profile":            t.Profile,
			"updated_at":         t.UpdatedAt,
		}).Error
}

func (r *repo) FindByContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) (*leasedomain.Tenant, error) {
	var items []leasedomain.Tenant
	err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter leasedomain.ListTenantsFilter) ([]leasedomain.Tenant, error) {
	stmt := db.WithContext(ctx).Model(&leasedomain.Tenant{})
	if filter.Name != "" {
		stmt = stmt.Where("LOWER(full_name) LIKE ?", "%"+filter.Name+"%")
	}
	if filter.ResidenceStatus != "" {
		stmt = stmt.Where("residence_status = ?", filter.ResidenceStatus)
	}

	var items []leasedomain.Tenant
	if err := stmt.Order("full_name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
