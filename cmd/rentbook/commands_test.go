package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/clock"
	financedomain "github.com/smallbiznis/rentbook/internal/finance/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolvePeriodDefaultsFromClock(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC))

	year, month := resolvePeriod(clk, 0, 0)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 3, month)

	year, month = resolvePeriod(clk, 2023, 0)
	assert.Equal(t, 2023, year)
	assert.Equal(t, 3, month)

	clk.Advance(24 * time.Hour)
	_, month = resolvePeriod(clk, 0, 0)
	assert.Equal(t, 4, month)

	clk.SetPeriod(2025, 1)
	year, month = resolvePeriod(clk, 0, 7)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 7, month)
}

func TestPrintSummary(t *testing.T) {
	cmd := SummaryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	summary := financedomain.NewSummary(9, 2024, 5, decimal.NewFromInt(3250000), financedomain.Breakdown{
		MasterLease:  decimal.NewFromInt(10000000),
		Opex:         decimal.NewFromInt(500000),
		Depreciation: decimal.NewFromInt(1000000),
	})
	summary.BuildingName = "Green Tower"
	printSummary(cmd, summary)

	assert.Equal(t,
		"Green Tower 2024-05  revenue 3,250,000.00  costs 11,500,000.00 (lease 10,000,000.00, opex 500,000.00, depreciation 1,000,000.00)  profit -8,250,000.00\n",
		out.String(),
	)
}

func TestSummaryFlags(t *testing.T) {
	cmd := SummaryCmd()
	for _, name := range []string{"year", "month", "building", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
