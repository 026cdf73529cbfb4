package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/pkg/money"
)

// Building is a leased property. The master lease fields describe what is
// paid to the owner.
type Building struct {
	ID                snowflake.ID     `json:"id" gorm:"primaryKey"`
	Name              string           `json:"name" gorm:"type:text;not null"`
	Address           *string          `json:"address,omitempty" gorm:"type:text"`
	MasterLeaseStart  *time.Time       `json:"master_lease_start,omitempty" gorm:"type:date"`
	MasterLeaseEnd    *time.Time       `json:"master_lease_end,omitempty" gorm:"type:date"`
	OwnerPaymentCycle *int             `json:"owner_payment_cycle,omitempty"`
	DepositToOwner    *decimal.Decimal `json:"deposit_to_owner,omitempty" gorm:"type:numeric(18,2)"`
	CreatedAt         time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time        `json:"updated_at" gorm:"not null"`
}

func (Building) TableName() string { return "buildings" }

// AmortizedMasterLease spreads the owner deposit over the payment cycle.
// It is a flat monthly figure, not prorated by elapsed lease time.
func (b Building) AmortizedMasterLease() decimal.Decimal {
	if b.OwnerPaymentCycle == nil || *b.OwnerPaymentCycle <= 0 || b.DepositToOwner == nil {
		return decimal.Zero
	}
	return b.DepositToOwner.Div(decimal.NewFromInt(int64(*b.OwnerPaymentCycle)))
}

type RoomStatus string

const (
	RoomEmpty       RoomStatus = "empty"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomEmpty, RoomOccupied, RoomMaintenance:
		return true
	default:
		return false
	}
}

// Room carries the unit prices and flat monthly fees used for invoicing.
type Room struct {
	ID                   snowflake.ID     `json:"id" gorm:"primaryKey"`
	BuildingID           snowflake.ID     `json:"building_id" gorm:"not null;index"`
	RoomNumber           string           `json:"room_number" gorm:"type:text;not null"`
	Status               RoomStatus       `json:"status" gorm:"type:text;not null;default:'empty'"`
	BasePrice            *decimal.Decimal `json:"base_price,omitempty" gorm:"type:numeric(18,2)"`
	ElectricityUnitPrice *decimal.Decimal `json:"electricity_unit_price,omitempty" gorm:"type:numeric(18,2)"`
	WaterUnitPrice       *decimal.Decimal `json:"water_unit_price,omitempty" gorm:"type:numeric(18,2)"`
	WifiFee              *decimal.Decimal `json:"wifi_fee,omitempty" gorm:"type:numeric(18,2)"`
	GarbageFee           *decimal.Decimal `json:"garbage_fee,omitempty" gorm:"type:numeric(18,2)"`
	ParkingFee           *decimal.Decimal `json:"parking_fee,omitempty" gorm:"type:numeric(18,2)"`
	CreatedAt            time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt            time.Time        `json:"updated_at" gorm:"not null"`
}

func (Room) TableName() string { return "rooms" }

// Rates returns the room's prices with absent values read as zero.
func (r Room) Rates() RoomRates {
	return RoomRates{
		ElectricityUnitPrice: money.OrZero(r.ElectricityUnitPrice),
		WaterUnitPrice:       money.OrZero(r.WaterUnitPrice),
		WifiFee:              money.OrZero(r.WifiFee),
		GarbageFee:           money.OrZero(r.GarbageFee),
		ParkingFee:           money.OrZero(r.ParkingFee),
	}
}

type RoomRates struct {
	ElectricityUnitPrice decimal.Decimal
	WaterUnitPrice       decimal.Decimal
	WifiFee              decimal.Decimal
	GarbageFee           decimal.Decimal
	ParkingFee           decimal.Decimal
}
