package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TenantRepository persists tenant profiles. Contracts use the generic store.
type TenantRepository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB, filter ListTenantsFilter) ([]Tenant, error)
}

type ListTenantsFilter struct {
	Name            string
	ResidenceStatus ResidenceStatus
}
