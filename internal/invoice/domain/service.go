package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// ComputeUtilityAmounts is soft: an unknown contract or room yields zeros.
	ComputeUtilityAmounts(ctx context.Context, contractID snowflake.ID, year, month int) (UtilityAmounts, error)
	GenerateMonthlyInvoice(ctx context.Context, req GenerateRequest) (*Invoice, error)

	CreateInvoice(ctx context.Context, req CreateRequest) (*Invoice, error)
	UpdateInvoice(ctx context.Context, req UpdateRequest) (*Invoice, error)
	ListInvoices(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	RenderInvoicePDF(ctx context.Context, id string) ([]byte, error)

	InvoicesForContracts(ctx context.Context, contractIDs []snowflake.ID, year, month int) ([]Invoice, error)
}

// Overrides replace computed values of a generated invoice. OtherFees is
// merged over the defaults key by key.
type Overrides struct {
	RentAmount        *decimal.Decimal `json:"rent_amount,omitempty"`
	ElectricityAmount *decimal.Decimal `json:"electricity_amount,omitempty"`
	WaterAmount       *decimal.Decimal `json:"water_amount,omitempty"`
	OtherFees         map[string]any   `json:"other_fees,omitempty"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount,omitempty"`
	DiscountReason    *string          `json:"discount_reason,omitempty"`
}

type GenerateRequest struct {
	ContractID string `json:"contract_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Overrides
}

type CreateRequest struct {
	ContractID        string          `json:"contract_id"`
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	Status            InvoiceStatus   `json:"status,omitempty"`
	RentAmount        decimal.Decimal `json:"rent_amount"`
	ElectricityAmount decimal.Decimal `json:"electricity_amount"`
	WaterAmount       decimal.Decimal `json:"water_amount"`
	OtherFees         map[string]any  `json:"other_fees,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	DiscountReason    *string         `json:"discount_reason,omitempty"`
}

type UpdateRequest struct {
	ID                string           `json:"id"`
	Status            *InvoiceStatus   `json:"status,omitempty"`
	RentAmount        *decimal.Decimal `json:"rent_amount,omitempty"`
	ElectricityAmount *decimal.Decimal `json:"electricity_amount,omitempty"`
	WaterAmount       *decimal.Decimal `json:"water_amount,omitempty"`
	OtherFees         map[string]any   `json:"other_fees,omitempty"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount,omitempty"`
	DiscountReason    *string          `json:"discount_reason,omitempty"`
}

type ListInvoiceRequest struct {
	ContractID string
	Year       int
	Month      int
	Status     string
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidContract  = errors.New("invalid_contract")
	ErrInvalidYear      = errors.New("invalid_year")
	ErrInvalidMonth     = errors.New("invalid_month")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrContractNotFound = errors.New("contract_not_found")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrInvoiceExists    = errors.New("invoice_exists")
)

// InvoiceExistsError reports the period that already has an invoice.
type InvoiceExistsError struct {
	ContractID snowflake.ID
	Year       int
	Month      int
}

func (e *InvoiceExistsError) Error() string {
	return fmt.Sprintf("invoice for contract %s %04d-%02d already exists", e.ContractID, e.Year, e.Month)
}

func (e *InvoiceExistsError) Is(target error) bool {
	return target == ErrInvoiceExists
}

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
