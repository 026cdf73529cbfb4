package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/pkg/db/pagination"
)

type Service interface {
	ListOpex(ctx context.Context, req ListOpexRequest) (ListResponse[OpexLog], error)
	CreateOpex(ctx context.Context, req CreateOpexRequest) (*OpexLog, error)
	UpdateOpex(ctx context.Context, req UpdateOpexRequest) (*OpexLog, error)
	DeleteOpex(ctx context.Context, id string) error

	ListSetupCosts(ctx context.Context, req ListRequest) (ListResponse[SetupCost], error)
	CreateSetupCost(ctx context.Context, req CreateSetupCostRequest) (*SetupCost, error)
	UpdateSetupCost(ctx context.Context, req UpdateSetupCostRequest) (*SetupCost, error)
	DeleteSetupCost(ctx context.Context, id string) error

	ListAssets(ctx context.Context, req ListRequest) (ListResponse[AssetLog], error)
	CreateAsset(ctx context.Context, req CreateAssetRequest) (*AssetLog, error)
	UpdateAsset(ctx context.Context, req UpdateAssetRequest) (*AssetLog, error)
	DeleteAsset(ctx context.Context, id string) error

	// OpexTotal sums every opex entry of the building period.
	OpexTotal(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error)
	DepreciableAssets(ctx context.Context, buildingID snowflake.ID) ([]AssetLog, error)
}

type ListResponse[T any] struct {
	pagination.PageInfo
	Items []T `json:"items"`
}

type ListRequest struct {
	BuildingID string
	pagination.Pagination
}

type ListOpexRequest struct {
	BuildingID string
	Year       int
	Month      int
	pagination.Pagination
}

type CreateOpexRequest struct {
	BuildingID string          `json:"building_id"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Category   string          `json:"category,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Note       *string         `json:"note,omitempty"`
}

type UpdateOpexRequest struct {
	ID         string           `json:"id"`
	BuildingID *string          `json:"building_id,omitempty"`
	Year       *int             `json:"year,omitempty"`
	Month      *int             `json:"month,omitempty"`
	Category   *string          `json:"category,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

type CreateSetupCostRequest struct {
	BuildingID   string          `json:"building_id"`
	Category     string          `json:"category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredDate string          `json:"occurred_date"`
	Note         *string         `json:"note,omitempty"`
}

type UpdateSetupCostRequest struct {
	ID           string           `json:"id"`
	BuildingID   *string          `json:"building_id,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	OccurredDate *string          `json:"occurred_date,omitempty"`
	Note         *string          `json:"note,omitempty"`
}

type CreateAssetRequest struct {
	BuildingID         string          `json:"building_id"`
	ItemName           string          `json:"item_name"`
	Amount             decimal.Decimal `json:"amount"`
	Category           string          `json:"category,omitempty"`
	PurchaseDate       *string         `json:"purchase_date,omitempty"`
	IsDepreciable      bool            `json:"is_depreciable"`
	DepreciationMonths *int            `json:"depreciation_months,omitempty"`
	InvoiceURL         *string         `json:"invoice_url,omitempty"`
}

type UpdateAssetRequest struct {
	ID                 string           `json:"id"`
	BuildingID         *string          `json:"building_id,omitempty"`
	ItemName           *string          `json:"item_name,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Category           *string          `json:"category,omitempty"`
	PurchaseDate       *string          `json:"purchase_date,omitempty"`
	IsDepreciable      *bool            `json:"is_depreciable,omitempty"`
	DepreciationMonths *int             `json:"depreciation_months,omitempty"`
	InvoiceURL         *string          `json:"invoice_url,omitempty"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidBuilding     = errors.New("invalid_building")
	ErrInvalidYear         = errors.New("invalid_year")
	ErrInvalidMonth        = errors.New("invalid_month")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidItemName     = errors.New("invalid_item_name")
	ErrInvalidDepreciation = errors.New("invalid_depreciation_months")
	ErrBuildingNotFound    = errors.New("building_not_found")
	ErrOpexNotFound        = errors.New("opex_log_not_found")
	ErrSetupCostNotFound   = errors.New("setup_cost_not_found")
	ErrAssetNotFound       = errors.New("asset_log_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
