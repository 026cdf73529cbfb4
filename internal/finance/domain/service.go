package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Service computes building financials. Absent related records contribute
// zero rather than failing the computation.
type Service interface {
	TotalRevenue(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error)
	MonthlyDepreciation(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error)
	AmortizedMasterLease(ctx context.Context, buildingID snowflake.ID) (decimal.Decimal, error)
	OpexForBuildingMonth(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error)

	BuildingMonthSummary(ctx context.Context, buildingID snowflake.ID, year, month int) (Summary, error)
	NetProfit(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error)
	PortfolioSummary(ctx context.Context, year, month int) (PortfolioSummary, error)
}

var (
	ErrInvalidBuilding = errors.New("invalid_building")
	ErrInvalidYear     = errors.New("invalid_year")
	ErrInvalidMonth    = errors.New("invalid_month")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
