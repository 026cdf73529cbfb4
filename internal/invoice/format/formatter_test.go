package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, NumberParts{
		Year:       2024,
		Month:      3,
		RoomNumber: "a 101",
		InvoiceID:  "1790000000123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-A101-123456", got)

	got, err = FormatInvoiceNumber("{YY}/{MM}/{ROOM}", NumberParts{Year: 2024, Month: 11})
	require.NoError(t, err)
	assert.Equal(t, "24/11/NA", got)
}

func TestFormatInvoiceNumberRejectsUnknownTokens(t *testing.T) {
	_, err := FormatInvoiceNumber("INV-{SEQ}", NumberParts{Year: 2024, Month: 1})
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("", NumberParts{})
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "3,250,000.00", FormatAmount(decimal.NewFromInt(3250000)))
	assert.Equal(t, "1,234.57", FormatAmount(decimal.RequireFromString("1234.567")))
	assert.Equal(t, "-50,000.00", FormatAmount(decimal.NewFromInt(-50000)))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
}
