package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MeterReading is the cumulative electricity and water counter of a room at
// the end of a billing period. One reading per room and period.
type MeterReading struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	RoomID             snowflake.ID    `json:"room_id" gorm:"not null;uniqueIndex:ux_meter_readings_room_period,priority:1"`
	Year               int             `json:"year" gorm:"not null;uniqueIndex:ux_meter_readings_room_period,priority:2"`
	Month              int             `json:"month" gorm:"not null;uniqueIndex:ux_meter_readings_room_period,priority:3"`
	ElectricityReading decimal.Decimal `json:"electricity_reading" gorm:"type:numeric(18,2);not null"`
	WaterReading       decimal.Decimal `json:"water_reading" gorm:"type:numeric(18,2);not null"`
	Note               *string         `json:"note,omitempty" gorm:"type:text"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null"`
}

func (MeterReading) TableName() string { return "meter_readings" }

// Consumption is the usage of a room over one period.
type Consumption struct {
	ElectricityUsage decimal.Decimal `json:"electricity_usage"`
	WaterUsage       decimal.Decimal `json:"water_usage"`
	// HasReading is false when the period itself has no reading; usage is then zero.
	HasReading bool `json:"has_reading"`
	// FirstReading marks a period with no prior reading, measured from zero.
	FirstReading bool `json:"first_reading"`
}
