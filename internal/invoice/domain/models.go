// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/pkg/money"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPaid
}

// Conventional other_fees keys.
const (
	FeeGarbage       = "garbage"
	FeeCleaning      = "cleaning"
	FeeWifi          = "wifi"
	FeeParking       = "parking"
	FeeMiscellaneous = "miscellaneous"
)

// Invoice is the monthly bill of one contract. At most one exists per
// contract period; invoices are never hard-deleted.
type Invoice struct {
	ID                snowflake.ID      `json:"id" gorm:"primaryKey"`
	ContractID        snowflake.ID      `json:"contract_id" gorm:"not null;uniqueIndex:ux_invoices_contract_period,priority:1"`
	Year              int               `json:"year" gorm:"not null;uniqueIndex:ux_invoices_contract_period,priority:2"`
	Month             int               `json:"month" gorm:"not null;uniqueIndex:ux_invoices_contract_period,priority:3"`
	Status            InvoiceStatus     `json:"status" gorm:"type:text;not null;default:'unpaid'"`
	RentAmount        decimal.Decimal   `json:"rent_amount" gorm:"type:numeric(18,2);not null"`
	ElectricityAmount decimal.Decimal   `json:"electricity_amount" gorm:"type:numeric(18,2);not null"`
	WaterAmount       decimal.Decimal   `json:"water_amount" gorm:"type:numeric(18,2);not null"`
	OtherFees         datatypes.JSONMap `json:"other_fees" gorm:"column:other_fees"`
	DiscountAmount    decimal.Decimal   `json:"discount_amount" gorm:"type:numeric(18,2);not null"`
	DiscountReason    *string           `json:"discount_reason,omitempty" gorm:"type:text"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// OtherFeesTotal sums the fee mapping. Values that are not numbers read as zero.
func (i Invoice) OtherFeesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range i.OtherFees {
		total = total.Add(money.Coerce(v))
	}
	return total
}

// Total is rent + electricity + water + other fees - discount.
func (i Invoice) Total() decimal.Decimal {
	return i.RentAmount.
		Add(i.ElectricityAmount).
		Add(i.WaterAmount).
		Add(i.OtherFeesTotal()).
		Sub(i.DiscountAmount)
}

// UtilityAmounts is what a room's meters and flat fees charge for a period.
type UtilityAmounts struct {
	ElectricityAmount decimal.Decimal `json:"electricity_amount"`
	WaterAmount       decimal.Decimal `json:"water_amount"`
	WifiFee           decimal.Decimal `json:"wifi_fee"`
	GarbageFee        decimal.Decimal `json:"garbage_fee"`
	ParkingFee        decimal.Decimal `json:"parking_fee"`
}

func ZeroUtilityAmounts() UtilityAmounts {
	return UtilityAmounts{
		ElectricityAmount: decimal.Zero,
		WaterAmount:       decimal.Zero,
		WifiFee:           decimal.Zero,
		GarbageFee:        decimal.Zero,
		ParkingFee:        decimal.Zero,
	}
}
