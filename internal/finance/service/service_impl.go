package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/cache"
	"github.com/smallbiznis/rentbook/internal/config"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	financedomain "github.com/smallbiznis/rentbook/internal/finance/domain"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	"github.com/smallbiznis/rentbook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentbook/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/pkg/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	scopeBuilding  = "building"
	scopePortfolio = "portfolio"

	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Property propertydomain.Service
	Lease    leasedomain.Service
	Invoice  invoicedomain.Service
	Expense  expensedomain.Service

	Cache   cache.SummaryCache          `optional:"true"`
	Finance *config.FinanceConfigHolder `optional:"true"`
	Metrics *obsmetrics.Metrics         `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	property propertydomain.Service
	lease    leasedomain.Service
	invoice  invoicedomain.Service
	expense  expensedomain.Service
	cache    cache.SummaryCache
	finance  *config.FinanceConfigHolder
	metrics  *obsmetrics.Metrics
}

func NewService(p Params) financedomain.Service {
	summaries := p.Cache
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	return &Service{
		log:      p.Log.Named("finance.service"),
		property: p.Property,
		lease:    p.Lease,
		invoice:  p.Invoice,
		expense:  p.Expense,
		cache:    summaries,
		finance:  p.Finance,
		metrics:  p.Metrics,
	}
}

// TotalRevenue sums the totals of invoices billed to contracts of the
// building's rooms in the period.
func (s *Service) TotalRevenue(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	if err := validatePeriod(year, month); err != nil {
		return decimal.Zero, err
	}

	roomIDs, err := s.property.RoomIDsForBuilding(ctx, buildingID)
	if err != nil || len(roomIDs) == 0 {
		return decimal.Zero, err
	}
	contractIDs, err := s.lease.ContractIDsForRooms(ctx, roomIDs)
	if err != nil || len(contractIDs) == 0 {
		return decimal.Zero, err
	}
	invoices, err := s.invoice.InvoicesForContracts(ctx, contractIDs, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range invoices {
		total = total.Add(item.Total())
	}
	return total, nil
}

func (s *Service) MonthlyDepreciation(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	if err := validatePeriod(year, month); err != nil {
		return decimal.Zero, err
	}

	assets, err := s.expense.DepreciableAssets(ctx, buildingID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, asset := range assets {
		total = total.Add(asset.DepreciationFor(year, month))
	}
	return total, nil
}

func (s *Service) AmortizedMasterLease(ctx context.Context, buildingID snowflake.ID) (decimal.Decimal, error) {
	building, err := s.property.FindBuilding(ctx, buildingID)
	if err != nil || building == nil {
		return decimal.Zero, err
	}
	return building.AmortizedMasterLease(), nil
}

func (s *Service) OpexForBuildingMonth(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	if err := validatePeriod(year, month); err != nil {
		return decimal.Zero, err
	}
	return s.expense.OpexTotal(ctx, buildingID, year, month)
}

func (s *Service) BuildingMonthSummary(ctx context.Context, buildingID snowflake.ID, year, month int) (financedomain.Summary, error) {
	if err := validatePeriod(year, month); err != nil {
		return financedomain.Summary{}, err
	}

	building, err := s.property.FindBuilding(ctx, buildingID)
	if err != nil {
		return financedomain.Summary{}, err
	}
	if building == nil {
		return financedomain.ZeroSummary(buildingID, year, month), nil
	}
	return s.summarize(ctx, building, year, month)
}

func (s *Service) NetProfit(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	summary, err := s.BuildingMonthSummary(ctx, buildingID, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Profit, nil
}

// PortfolioSummary computes every building concurrently; the result keeps
// the building name order of ListBuildings.
func (s *Service) PortfolioSummary(ctx context.Context, year, month int) (financedomain.PortfolioSummary, error) {
	if err := validatePeriod(year, month); err != nil {
		return financedomain.PortfolioSummary{}, err
	}

	buildings, err := s.property.ListBuildings(ctx)
	if err != nil {
		return financedomain.PortfolioSummary{}, err
	}

	summaries := make([]financedomain.Summary, len(buildings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i := range buildings {
		building := &buildings[i]
		g.Go(func() error {
			summary, err := s.summarize(gctx, building, year, month)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return financedomain.PortfolioSummary{}, err
	}

	out := financedomain.PortfolioSummary{
		Year:      year,
		Month:     month,
		Revenue:   decimal.Zero,
		Costs:     decimal.Zero,
		Profit:    decimal.Zero,
		Buildings: summaries,
	}
	for _, summary := range summaries {
		out.Revenue = out.Revenue.Add(summary.Revenue)
		out.Costs = out.Costs.Add(summary.Costs)
		out.Profit = out.Profit.Add(summary.Profit)
	}
	s.metrics.RecordSummaryComputed(ctx, scopePortfolio)
	return out, nil
}

// summarize reads through the summary cache. Cache failures are logged and
// the summary is computed from storage. The version is taken before the
// computation so a write that invalidates the building meanwhile wins.
func (s *Service) summarize(ctx context.Context, building *propertydomain.Building, year, month int) (financedomain.Summary, error) {
	version, err := s.cache.Version(ctx, building.ID)
	cacheable := err == nil
	if err != nil {
		s.metrics.RecordSummaryCache(ctx, s.cache.Backend(), cacheError)
		s.log.Warn("summary cache version read failed", zap.String("building_id", building.ID.String()), zap.Error(err))
	} else {
		var cached financedomain.Summary
		ok, err := s.cache.Get(ctx, building.ID, version, year, month, &cached)
		switch {
		case err != nil:
			s.metrics.RecordSummaryCache(ctx, s.cache.Backend(), cacheError)
			s.log.Warn("summary cache read failed", zap.String("building_id", building.ID.String()), zap.Error(err))
		case ok:
			s.metrics.RecordSummaryCache(ctx, s.cache.Backend(), cacheHit)
			return cached, nil
		default:
			s.metrics.RecordSummaryCache(ctx, s.cache.Backend(), cacheMiss)
		}
	}

	summary, err := s.compute(ctx, building, year, month)
	if err != nil {
		return financedomain.Summary{}, err
	}
	if !cacheable {
		return summary, nil
	}

	if err := s.cache.Set(ctx, building.ID, version, year, month, summary); err != nil {
		s.log.Warn("summary cache write failed", zap.String("building_id", building.ID.String()), zap.Error(err))
	}
	return summary, nil
}

func (s *Service) compute(ctx context.Context, building *propertydomain.Building, year, month int) (financedomain.Summary, error) {
	revenue, err := s.TotalRevenue(ctx, building.ID, year, month)
	if err != nil {
		return financedomain.Summary{}, err
	}
	opex, err := s.OpexForBuildingMonth(ctx, building.ID, year, month)
	if err != nil {
		return financedomain.Summary{}, err
	}
	depreciation, err := s.MonthlyDepreciation(ctx, building.ID, year, month)
	if err != nil {
		return financedomain.Summary{}, err
	}

	summary := financedomain.NewSummary(building.ID, year, month, revenue, financedomain.Breakdown{
		MasterLease:  building.AmortizedMasterLease(),
		Opex:         opex,
		Depreciation: depreciation,
	})
	summary.BuildingName = building.Name

	s.metrics.RecordSummaryComputed(ctx, scopeBuilding)
	log := logger.WithBuilding(logger.WithContext(ctx, s.log), building.ID.Int64())
	logger.WithPeriod(log, year, month).Debug("computed building summary",
		zap.String("revenue", summary.Revenue.String()),
		zap.String("costs", summary.Costs.String()),
		zap.String("profit", summary.Profit.String()),
	)
	return summary, nil
}

func (s *Service) parallelism() int {
	if n := s.finance.Get().PortfolioParallel; n > 0 {
		return n
	}
	return 1
}

func validatePeriod(year, month int) error {
	if year <= 0 {
		return financedomain.ErrInvalidYear
	}
	if !period.ValidMonth(month) {
		return financedomain.ErrInvalidMonth
	}
	return nil
}
