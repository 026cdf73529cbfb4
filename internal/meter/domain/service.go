package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	RecordReading(ctx context.Context, req RecordRequest) (*MeterReading, error)
	ConsumptionForPeriod(ctx context.Context, roomID snowflake.ID, year, month int) (Consumption, error)
	ListReadings(ctx context.Context, req ListRequest) ([]ReadingResponse, error)
	DeleteReading(ctx context.Context, id string) error
}

type RecordRequest struct {
	RoomID             string          `json:"room_id"`
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	ElectricityReading decimal.Decimal `json:"electricity_reading"`
	WaterReading       decimal.Decimal `json:"water_reading"`
	Note               *string         `json:"note,omitempty"`
}

type ListRequest struct {
	RoomID string
}

// ReadingResponse is a stored reading together with the usage it implies.
type ReadingResponse struct {
	MeterReading
	ElectricityUsage decimal.Decimal `json:"electricity_usage"`
	WaterUsage       decimal.Decimal `json:"water_usage"`
	FirstReading     bool            `json:"first_reading"`
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidRoom    = errors.New("invalid_room")
	ErrInvalidYear    = errors.New("invalid_year")
	ErrInvalidMonth   = errors.New("invalid_month")
	ErrInvalidReading = errors.New("invalid_reading")
	ErrRoomNotFound   = errors.New("room_not_found")
	ErrNotFound       = errors.New("meter_reading_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
