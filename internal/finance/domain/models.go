// Package domain holds the profit and loss figures of a building period.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Breakdown itemizes the costs of a building period.
type Breakdown struct {
	MasterLease  decimal.Decimal `json:"master_lease"`
	Opex         decimal.Decimal `json:"opex"`
	Depreciation decimal.Decimal `json:"depreciation"`
}

func (b Breakdown) Total() decimal.Decimal {
	return b.MasterLease.Add(b.Opex).Add(b.Depreciation)
}

// Summary is revenue, costs and profit of one building for one month.
// Profit is always Revenue - Costs.
type Summary struct {
	BuildingID   snowflake.ID    `json:"building_id"`
	BuildingName string          `json:"building_name,omitempty"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	Costs        decimal.Decimal `json:"costs"`
	Profit       decimal.Decimal `json:"profit"`
	Breakdown    Breakdown       `json:"breakdown"`
}

// ZeroSummary is reported for buildings that do not exist.
func ZeroSummary(buildingID snowflake.ID, year, month int) Summary {
	return Summary{
		BuildingID: buildingID,
		Year:       year,
		Month:      month,
		Revenue:    decimal.Zero,
		Costs:      decimal.Zero,
		Profit:     decimal.Zero,
		Breakdown: Breakdown{
			MasterLease:  decimal.Zero,
			Opex:         decimal.Zero,
			Depreciation: decimal.Zero,
		},
	}
}

func NewSummary(buildingID snowflake.ID, year, month int, revenue decimal.Decimal, breakdown Breakdown) Summary {
	costs := breakdown.Total()
	return Summary{
		BuildingID: buildingID,
		Year:       year,
		Month:      month,
		Revenue:    revenue,
		Costs:      costs,
		Profit:     revenue.Sub(costs),
		Breakdown:  breakdown,
	}
}

// PortfolioSummary aggregates every building of the period.
type PortfolioSummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Revenue   decimal.Decimal `json:"revenue"`
	Costs     decimal.Decimal `json:"costs"`
	Profit    decimal.Decimal `json:"profit"`
	Buildings []Summary       `json:"buildings"`
}
