package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	ListContracts(ctx context.Context, req ListContractsRequest) ([]Contract, error)
	GetContract(ctx context.Context, id string) (*Contract, error)
	CreateContract(ctx context.Context, req CreateContractRequest) (*Contract, error)
	UpdateContract(ctx context.Context, req UpdateContractRequest) (*Contract, error)

	// FindContract returns nil, nil when the contract is absent.
	FindContract(ctx context.Context, id snowflake.ID) (*Contract, error)
	ContractIDsForRooms(ctx context.Context, roomIDs []snowflake.ID) ([]snowflake.ID, error)

	GetTenant(ctx context.Context, contractID string) (*Tenant, error)
	ListTenants(ctx context.Context, req ListTenantsRequest) ([]Tenant, error)
	CreateTenant(ctx context.Context, req CreateTenantRequest) (*Tenant, error)
	UpdateTenant(ctx context.Context, req UpdateTenantRequest) (*Tenant, error)
	// UpdateOwnProfile applies a tenant's self-service edit. Locked profiles are rejected.
	UpdateOwnProfile(ctx context.Context, req SelfUpdateRequest) (*Tenant, error)
	SetLock(ctx context.Context, contractID string, locked bool) (*Tenant, error)
}

type ListContractsRequest struct {
	RoomID string
}

type CreateContractRequest struct {
	RoomID          string           `json:"room_id"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	ActualRentPrice decimal.Decimal  `json:"actual_rent_price"`
	DepositAmount   *decimal.Decimal `json:"deposit_amount,omitempty"`
}

type UpdateContractRequest struct {
	ID              string           `json:"id"`
	RoomID          *string          `json:"room_id,omitempty"`
	StartDate       *string          `json:"start_date,omitempty"`
	EndDate         *string          `json:"end_date,omitempty"`
	ActualRentPrice *decimal.Decimal `json:"actual_rent_price,omitempty"`
	DepositAmount   *decimal.Decimal `json:"deposit_amount,omitempty"`
}

type ListTenantsRequest struct {
	Name            string
	ResidenceStatus string
}

type CreateTenantRequest struct {
	ContractID      string          `json:"contract_id"`
	FullName        string          `json:"full_name"`
	IDNumber        *string         `json:"id_number,omitempty"`
	IDCardFrontPath *string         `json:"id_card_front_path,omitempty"`
	IDCardBackPath  *string         `json:"id_card_back_path,omitempty"`
	ResidenceStatus ResidenceStatus `json:"residence_status,omitempty"`
	Profile         map[string]any  `json:"profile,omitempty"`
}

// UpdateTenantRequest is the administrative edit; every field is writable.
type UpdateTenantRequest struct {
	ContractID      string           `json:"contract_id"`
	FullName        *string          `json:"full_name,omitempty"`
	IDNumber        *string          `json:"id_number,omitempty"`
	IDCardFrontPath *string          `json:"id_card_front_path,omitempty"`
	IDCardBackPath  *string          `json:"id_card_back_path,omitempty"`
	ResidenceStatus *ResidenceStatus `json:"residence_status,omitempty"`
	IsLocked        *bool            `json:"is_locked,omitempty"`
	Profile         map[string]any   `json:"profile,omitempty"`
}

// SelfUpdateRequest carries the fields a tenant may edit on their own profile.
type SelfUpdateRequest struct {
	ContractID      string         `json:"-"`
	FullName        *string        `json:"full_name,omitempty"`
	IDNumber        *string        `json:"id_number,omitempty"`
	IDCardFrontPath *string        `json:"id_card_front_path,omitempty"`
	IDCardBackPath  *string        `json:"id_card_back_path,omitempty"`
	Profile         map[string]any `json:"profile,omitempty"`
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidContract        = errors.New("invalid_contract")
	ErrInvalidRoom            = errors.New("invalid_room")
	ErrInvalidDates           = errors.New("invalid_contract_dates")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidFullName        = errors.New("invalid_full_name")
	ErrInvalidResidenceStatus = errors.New("invalid_residence_status")
	ErrRoomNotFound           = errors.New("room_not_found")
	ErrContractNotFound       = errors.New("contract_not_found")
	ErrTenantNotFound         = errors.New("tenant_not_found")
	ErrTenantExists           = errors.New("tenant_exists")
	ErrProfileLocked          = errors.New("profile_locked")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
