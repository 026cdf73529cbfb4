package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Contract is a rental agreement for one room. Contracts are never hard-deleted.
type Contract struct {
	ID              snowflake.ID     `json:"id" gorm:"primaryKey"`
	RoomID          snowflake.ID     `json:"room_id" gorm:"not null;index"`
	StartDate       time.Time        `json:"start_date" gorm:"type:date;not null"`
	EndDate         time.Time        `json:"end_date" gorm:"type:date;not null"`
	ActualRentPrice decimal.Decimal  `json:"actual_rent_price" gorm:"type:numeric(18,2);not null"`
	DepositAmount   *decimal.Decimal `json:"deposit_amount,omitempty" gorm:"type:numeric(18,2)"`
	CreatedAt       time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"not null"`
}

func (Contract) TableName() string { return "contracts" }

type ResidenceStatus string

const (
	ResidencePending   ResidenceStatus = "pending"
	ResidenceCompleted ResidenceStatus = "completed"
)

func (s ResidenceStatus) Valid() bool {
	return s == ResidencePending || s == ResidenceCompleted
}

// Tenant is the occupant profile attached to a contract.
type Tenant struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	ContractID      snowflake.ID      `json:"contract_id" gorm:"not null;uniqueIndex:ux_tenants_contract"`
	FullName        string            `json:"full_name" gorm:"type:text;not null"`
	IDNumber        *string           `json:"id_number,omitempty" gorm:"column:id_number;type:text"`
	IDCardFrontPath *string           `json:"id_card_front_path,omitempty" gorm:"column:id_card_front_path;type:text"`
	IDCardBackPath  *string           `json:"id_card_back_path,omitempty" gorm:"column:id_card_back_path;type:text"`
	ResidenceStatus ResidenceStatus   `json:"residence_status" gorm:"type:text;not null;default:'pending'"`
	IsLocked        bool              `json:"is_locked" gorm:"not null;default:false"`
	Profile         datatypes.JSONMap `json:"profile" gorm:"column:profile"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null"`
}

func (Tenant) TableName() string { return "tenants" }

// MaskIDNumber keeps the first and last three characters. Shorter values are
// fully hidden.
func MaskIDNumber(value string) string {
	runes := []rune(value)
	if len(runes) < 6 {
		return "***"
	}
	return string(runes[:3]) + "***" + string(runes[len(runes)-3:])
}

// Masked returns a copy whose id number is masked.
func (t Tenant) Masked() Tenant {
	if t.IDNumber != nil {
		masked := MaskIDNumber(*t.IDNumber)
		t.IDNumber = &masked
	}
	return t
}
