package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CategoryType string

const (
	TypeOpex  CategoryType = "opex"
	TypeSetup CategoryType = "setup"
	TypeCapex CategoryType = "capex"
)

func (t CategoryType) Valid() bool {
	switch t {
	case TypeOpex, TypeSetup, TypeCapex:
		return true
	default:
		return false
	}
}

// ExpenseCategory is one entry of the expense taxonomy. Code is unique within Type.
type ExpenseCategory struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Type      CategoryType `json:"type" gorm:"type:text;not null;uniqueIndex:ux_expense_categories_type_code,priority:1"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_expense_categories_type_code,priority:2"`
	Label     string       `json:"label" gorm:"type:text;not null"`
	SortOrder int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (ExpenseCategory) TableName() string { return "expense_categories" }
