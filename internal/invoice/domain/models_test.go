package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestInvoiceTotal(t *testing.T) {
	inv := Invoice{
		RentAmount:        decimal.NewFromInt(3000000),
		ElectricityAmount: decimal.NewFromInt(150000),
		WaterAmount:       decimal.NewFromInt(50000),
		OtherFees:         datatypes.JSONMap{FeeGarbage: 50000, FeeWifi: "100000"},
		DiscountAmount:    decimal.NewFromInt(50000),
	}
	assert.True(t, decimal.NewFromInt(3250000).Equal(inv.Total()), inv.Total().String())
}

func TestInvoiceTotalIgnoresNonNumericFees(t *testing.T) {
	inv := Invoice{
		RentAmount: decimal.NewFromInt(1000),
		OtherFees:  datatypes.JSONMap{"note": "n/a", "flag": true, "nested": map[string]any{"a": 1}, FeeParking: 25.5},
	}
	assert.True(t, decimal.RequireFromString("1025.5").Equal(inv.Total()), inv.Total().String())
}

func TestInvoiceTotalWithoutFees(t *testing.T) {
	inv := Invoice{RentAmount: decimal.NewFromInt(500), DiscountAmount: decimal.NewFromInt(100)}
	assert.True(t, decimal.NewFromInt(400).Equal(inv.Total()))
}

func TestInvoiceExistsErrorIs(t *testing.T) {
	err := error(&InvoiceExistsError{ContractID: 42, Year: 2024, Month: 5})
	assert.ErrorIs(t, err, ErrInvoiceExists)
	assert.Contains(t, err.Error(), "2024-05")
}
