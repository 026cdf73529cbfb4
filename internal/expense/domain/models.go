package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/pkg/period"
)

// OpexLog is a recurring operating expense booked against a building period.
// Several entries may share a period.
type OpexLog struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	BuildingID snowflake.ID    `json:"building_id" gorm:"not null;index:ix_opex_logs_building_period,priority:1"`
	Year       int             `json:"year" gorm:"not null;index:ix_opex_logs_building_period,priority:2"`
	Month      int             `json:"month" gorm:"not null;index:ix_opex_logs_building_period,priority:3"`
	Category   string          `json:"category" gorm:"type:text;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Note       *string         `json:"note,omitempty" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"not null"`
}

func (OpexLog) TableName() string { return "opex_logs" }

// SetupCost is a one-off cost of preparing a building.
type SetupCost struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	BuildingID   snowflake.ID    `json:"building_id" gorm:"not null;index"`
	Category     string          `json:"category" gorm:"type:text;not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	OccurredDate time.Time       `json:"occurred_date" gorm:"type:date;not null"`
	Note         *string         `json:"note,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null"`
}

func (SetupCost) TableName() string { return "setup_costs" }

// AssetLog is a capitalized purchase, optionally depreciated straight-line.
type AssetLog struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	BuildingID         snowflake.ID    `json:"building_id" gorm:"not null;index"`
	ItemName           string          `json:"item_name" gorm:"type:text;not null"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Category           string          `json:"category" gorm:"type:text;not null"`
	PurchaseDate       *time.Time      `json:"purchase_date,omitempty" gorm:"type:date"`
	IsDepreciable      bool            `json:"is_depreciable" gorm:"not null;default:false"`
	DepreciationMonths *int            `json:"depreciation_months,omitempty"`
	InvoiceURL         *string         `json:"invoice_url,omitempty" gorm:"column:invoice_url;type:text"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null"`
}

func (AssetLog) TableName() string { return "asset_logs" }

// MonthlyDepreciation is amount / depreciation_months, or zero when the asset
// is not depreciable or has no positive schedule.
func (a AssetLog) MonthlyDepreciation() decimal.Decimal {
	if !a.IsDepreciable || a.DepreciationMonths == nil || *a.DepreciationMonths <= 0 {
		return decimal.Zero
	}
	return a.Amount.Div(decimal.NewFromInt(int64(*a.DepreciationMonths)))
}

// InWindow reports whether the period is one of the depreciation_months
// calendar months starting with the purchase month.
func (a AssetLog) InWindow(year, month int) bool {
	if !a.IsDepreciable || a.PurchaseDate == nil || a.DepreciationMonths == nil || *a.DepreciationMonths <= 0 {
		return false
	}
	start := period.Of(*a.PurchaseDate).Index()
	idx := period.New(year, month).Index()
	return idx >= start && idx < start+*a.DepreciationMonths
}

// DepreciationFor is the amount charged to the period.
func (a AssetLog) DepreciationFor(year, month int) decimal.Decimal {
	if !a.InWindow(year, month) {
		return decimal.Zero
	}
	return a.MonthlyDepreciation()
}
