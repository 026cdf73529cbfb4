package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	ListBuildings(ctx context.Context) ([]Building, error)
	GetBuilding(ctx context.Context, id string) (*Building, error)
	CreateBuilding(ctx context.Context, req CreateBuildingRequest) (*Building, error)
	UpdateBuilding(ctx context.Context, req UpdateBuildingRequest) (*Building, error)

	ListRooms(ctx context.Context, req ListRoomsRequest) ([]Room, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error)
	UpdateRoom(ctx context.Context, req UpdateRoomRequest) (*Room, error)

	// FindBuilding and FindRoom return nil, nil when the record is absent.
	FindBuilding(ctx context.Context, id snowflake.ID) (*Building, error)
	FindRoom(ctx context.Context, id snowflake.ID) (*Room, error)
	RoomIDsForBuilding(ctx context.Context, buildingID snowflake.ID) ([]snowflake.ID, error)
}

type CreateBuildingRequest struct {
	Name              string           `json:"name"`
	Address           *string          `json:"address,omitempty"`
	MasterLeaseStart  *string          `json:"master_lease_start,omitempty"`
	MasterLeaseEnd    *string          `json:"master_lease_end,omitempty"`
	OwnerPaymentCycle *int             `json:"owner_payment_cycle,omitempty"`
	DepositToOwner    *decimal.Decimal `json:"deposit_to_owner,omitempty"`
}

type UpdateBuildingRequest struct {
	ID                string           `json:"id"`
	Name              *string          `json:"name,omitempty"`
	Address           *string          `json:"address,omitempty"`
	MasterLeaseStart  *string          `json:"master_lease_start,omitempty"`
	MasterLeaseEnd    *string          `json:"master_lease_end,omitempty"`
	OwnerPaymentCycle *int             `json:"owner_payment_cycle,omitempty"`
	DepositToOwner    *decimal.Decimal `json:"deposit_to_owner,omitempty"`
}

type ListRoomsRequest struct {
	BuildingID string
	RoomNumber string
}

type CreateRoomRequest struct {
	BuildingID           string           `json:"building_id"`
	RoomNumber           string           `json:"room_number"`
	Status               RoomStatus       `json:"status,omitempty"`
	BasePrice            *decimal.Decimal `json:"base_price,omitempty"`
	ElectricityUnitPrice *decimal.Decimal `json:"electricity_unit_price,omitempty"`
	WaterUnitPrice       *decimal.Decimal `json:"water_unit_price,omitempty"`
	WifiFee              *decimal.Decimal `json:"wifi_fee,omitempty"`
	GarbageFee           *decimal.Decimal `json:"garbage_fee,omitempty"`
	ParkingFee           *decimal.Decimal `json:"parking_fee,omitempty"`
}

type UpdateRoomRequest struct {
	ID                   string           `json:"id"`
	BuildingID           *string          `json:"building_id,omitempty"`
	RoomNumber           *string          `json:"room_number,omitempty"`
	Status               *RoomStatus      `json:"status,omitempty"`
	BasePrice            *decimal.Decimal `json:"base_price,omitempty"`
	ElectricityUnitPrice *decimal.Decimal `json:"electricity_unit_price,omitempty"`
	WaterUnitPrice       *decimal.Decimal `json:"water_unit_price,omitempty"`
	WifiFee              *decimal.Decimal `json:"wifi_fee,omitempty"`
	GarbageFee           *decimal.Decimal `json:"garbage_fee,omitempty"`
	ParkingFee           *decimal.Decimal `json:"parking_fee,omitempty"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidBuilding     = errors.New("invalid_building")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidRoomNumber   = errors.New("invalid_room_number")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPaymentCycle = errors.New("invalid_owner_payment_cycle")
	ErrInvalidLeaseDates   = errors.New("invalid_master_lease_dates")
	ErrBuildingNotFound    = errors.New("building_not_found")
	ErrRoomNotFound        = errors.New("room_not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
