package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/cache"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	"github.com/smallbiznis/rentbook/internal/config"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/pkg/db/option"
	"github.com/smallbiznis/rentbook/pkg/db/pagination"
	"github.com/smallbiznis/rentbook/pkg/money"
	"github.com/smallbiznis/rentbook/pkg/period"
	"github.com/smallbiznis/rentbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        expensedomain.Repository
	Property    propertydomain.Service
	Categories  categorydomain.Service
	Finance     *config.FinanceConfigHolder `optional:"true"`
	Invalidator cache.Invalidator           `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  expensedomain.Repository

	opexrepo    repository.Repository[expensedomain.OpexLog]
	setuprepo   repository.Repository[expensedomain.SetupCost]
	assetrepo   repository.Repository[expensedomain.AssetLog]
	property    propertydomain.Service
	categories  categorydomain.Service
	finance     *config.FinanceConfigHolder
	invalidator cache.Invalidator
}

func New(p Params) expensedomain.Service {
	invalidator := p.Invalidator
	if invalidator == nil {
		invalidator = cache.NoopSummaryCache{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		repo:  p.Repo,

		opexrepo:    repository.ProvideStore[expensedomain.OpexLog](p.DB),
		setuprepo:   repository.ProvideStore[expensedomain.SetupCost](p.DB),
		assetrepo:   repository.ProvideStore[expensedomain.AssetLog](p.DB),
		property:    p.Property,
		categories:  p.Categories,
		finance:     p.Finance,
		invalidator: invalidator,
	}
}

func (s *Service) ListOpex(ctx context.Context, req expensedomain.ListOpexRequest) (expensedomain.ListResponse[expensedomain.OpexLog], error) {
	filter := &expensedomain.OpexLog{Year: req.Year, Month: req.Month}
	buildingID, err := parseOptionalBuilding(req.BuildingID)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.OpexLog]{}, err
	}
	filter.BuildingID = buildingID
	if req.Month != 0 && !period.ValidMonth(req.Month) {
		return expensedomain.ListResponse[expensedomain.OpexLog]{}, expensedomain.ErrInvalidMonth
	}

	items, err := s.opexrepo.Find(ctx, filter, listOptions(req.Pagination)...)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.OpexLog]{}, err
	}
	return buildPage(items, req.Pagination, func(item expensedomain.OpexLog) snowflake.ID { return item.ID }), nil
}

func (s *Service) CreateOpex(ctx context.Context, req expensedomain.CreateOpexRequest) (*expensedomain.OpexLog, error) {
	buildingID, err := s.requireBuilding(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if err := validatePeriod(req.Year, req.Month); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, expensedomain.ErrInvalidAmount
	}
	category, err := s.resolveCategory(ctx, categorydomain.TypeOpex, req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &expensedomain.OpexLog{
		ID:         s.genID.Generate(),
		BuildingID: buildingID,
		Year:       req.Year,
		Month:      req.Month,
		Category:   category,
		Amount:     req.Amount,
		Note:       trimOptional(req.Note),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.opexrepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, item.BuildingID)
	return item, nil
}

func (s *Service) UpdateOpex(ctx context.Context, req expensedomain.UpdateOpexRequest) (*expensedomain.OpexLog, error) {
	id, err := expensedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, expensedomain.ErrInvalidID
	}
	item, err := s.opexrepo.FindOne(ctx, &expensedomain.OpexLog{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, expensedomain.ErrOpexNotFound
	}
	previousBuilding := item.BuildingID

	if req.BuildingID != nil {
		buildingID, err := s.requireBuilding(ctx, *req.BuildingID)
		if err != nil {
			return nil, err
		}
		item.BuildingID = buildingID
	}
	if req.Year != nil {
		item.Year = *req.Year
	}
	if req.Month != nil {
		item.Month = *req.Month
	}
	if err := validatePeriod(item.Year, item.Month); err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, expensedomain.ErrInvalidAmount
		}
		item.Amount = *req.Amount
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, categorydomain.TypeOpex, *req.Category)
		if err != nil {
			return nil, err
		}
		item.Category = category
	}
	if req.Note != nil {
		item.Note = trimOptional(req.Note)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.opexrepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, item.BuildingID)
	if previousBuilding != item.BuildingID {
		s.invalidate(ctx, previousBuilding)
	}
	return item, nil
}

func (s *Service) DeleteOpex(ctx context.Context, id string) error {
	opexID, err := expensedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return expensedomain.ErrInvalidID
	}
	item, err := s.opexrepo.FindOne(ctx, &expensedomain.OpexLog{ID: opexID})
	if err != nil {
		return err
	}
	if item == nil {
		return expensedomain.ErrOpexNotFound
	}

	if err := s.opexrepo.Delete(ctx, int64(item.ID)); err != nil {
		return err
	}
	s.invalidate(ctx, item.BuildingID)
	return nil
}

func (s *Service) ListSetupCosts(ctx context.Context, req expensedomain.ListRequest) (expensedomain.ListResponse[expensedomain.SetupCost], error) {
	buildingID, err := parseOptionalBuilding(req.BuildingID)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.SetupCost]{}, err
	}

	items, err := s.setuprepo.Find(ctx, &expensedomain.SetupCost{BuildingID: buildingID}, listOptions(req.Pagination)...)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.SetupCost]{}, err
	}
	return buildPage(items, req.Pagination, func(item expensedomain.SetupCost) snowflake.ID { return item.ID }), nil
}

func (s *Service) CreateSetupCost(ctx context.Context, req expensedomain.CreateSetupCostRequest) (*expensedomain.SetupCost, error) {
	buildingID, err := s.requireBuilding(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, expensedomain.ErrInvalidAmount
	}
	occurred, err := period.ParseDate(req.OccurredDate)
	if err != nil {
		return nil, expensedomain.ErrInvalidDate
	}
	category, err := s.resolveCategory(ctx, categorydomain.TypeSetup, req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &expensedomain.SetupCost{
		ID:           s.genID.Generate(),
		BuildingID:   buildingID,
		Category:     category,
		Amount:       req.Amount,
		OccurredDate: occurred,
		Note:         trimOptional(req.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.setuprepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateSetupCost(ctx context.Context, req expensedomain.UpdateSetupCostRequest) (*expensedomain.SetupCost, error) {
	id, err := expensedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, expensedomain.ErrInvalidID
	}
	item, err := s.setuprepo.FindOne(ctx, &expensedomain.SetupCost{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, expensedomain.ErrSetupCostNotFound
	}

	if req.BuildingID != nil {
		buildingID, err := s.requireBuilding(ctx, *req.BuildingID)
		if err != nil {
			return nil, err
		}
		item.BuildingID = buildingID
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, expensedomain.ErrInvalidAmount
		}
		item.Amount = *req.Amount
	}
	if req.OccurredDate != nil {
		occurred, err := period.ParseDate(*req.OccurredDate)
		if err != nil {
			return nil, expensedomain.ErrInvalidDate
		}
		item.OccurredDate = occurred
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, categorydomain.TypeSetup, *req.Category)
		if err != nil {
			return nil, err
		}
		item.Category = category
	}
	if req.Note != nil {
		item.Note = trimOptional(req.Note)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.setuprepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) DeleteSetupCost(ctx context.Context, id string) error {
	costID, err := expensedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return expensedomain.ErrInvalidID
	}
	item, err := s.setuprepo.FindOne(ctx, &expensedomain.SetupCost{ID: costID})
	if err != nil {
		return err
	}
	if item == nil {
		return expensedomain.ErrSetupCostNotFound
	}
	return s.setuprepo.Delete(ctx, int64(item.ID))
}

func (s *Service) ListAssets(ctx context.Context, req expensedomain.ListRequest) (expensedomain.ListResponse[expensedomain.AssetLog], error) {
	buildingID, err := parseOptionalBuilding(req.BuildingID)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.AssetLog]{}, err
	}

	items, err := s.assetrepo.Find(ctx, &expensedomain.AssetLog{BuildingID: buildingID}, listOptions(req.Pagination)...)
	if err != nil {
		return expensedomain.ListResponse[expensedomain.AssetLog]{}, err
	}
	return buildPage(items, req.Pagination, func(item expensedomain.AssetLog) snowflake.ID { return item.ID }), nil
}

func (s *Service) CreateAsset(ctx context.Context, req expensedomain.CreateAssetRequest) (*expensedomain.AssetLog, error) {
	buildingID, err := s.requireBuilding(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	itemName := strings.TrimSpace(req.ItemName)
	if itemName == "" {
		return nil, expensedomain.ErrInvalidItemName
	}
	if req.Amount.IsNegative() {
		return nil, expensedomain.ErrInvalidAmount
	}
	purchased, err := period.ParseOptionalDate(req.PurchaseDate)
	if err != nil {
		return nil, expensedomain.ErrInvalidDate
	}
	category, err := s.resolveCategory(ctx, categorydomain.TypeCapex, req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &expensedomain.AssetLog{
		ID:                 s.genID.Generate(),
		BuildingID:         buildingID,
		ItemName:           itemName,
		Amount:             req.Amount,
		Category:           category,
		PurchaseDate:       purchased,
		IsDepreciable:      req.IsDepreciable,
		DepreciationMonths: req.DepreciationMonths,
		InvoiceURL:         trimOptional(req.InvoiceURL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := validateAsset(item); err != nil {
		return nil, err
	}
	if err := s.assetrepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, item.BuildingID)
	return item, nil
}

func (s *Service) UpdateAsset(ctx context.Context, req expensedomain.UpdateAssetRequest) (*expensedomain.AssetLog, error) {
	id, err := expensedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, expensedomain.ErrInvalidID
	}
	item, err := s.assetrepo.FindOne(ctx, &expensedomain.AssetLog{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, expensedomain.ErrAssetNotFound
	}
	previousBuilding := item.BuildingID

	if req.BuildingID != nil {
		buildingID, err := s.requireBuilding(ctx, *req.BuildingID)
		if err != nil {
			return nil, err
		}
		item.BuildingID = buildingID
	}
	if req.ItemName != nil {
		itemName := strings.TrimSpace(*req.ItemName)
		if itemName == "" {
			return nil, expensedomain.ErrInvalidItemName
		}
		item.ItemName = itemName
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, expensedomain.ErrInvalidAmount
		}
		item.Amount = *req.Amount
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, categorydomain.TypeCapex, *req.Category)
		if err != nil {
			return nil, err
		}
		item.Category = category
	}
	if req.PurchaseDate != nil {
		purchased, err := period.ParseOptionalDate(req.PurchaseDate)
		if err != nil {
			return nil, expensedomain.ErrInvalidDate
		}
		item.PurchaseDate = purchased
	}
	if req.IsDepreciable != nil {
		item.IsDepreciable = *req.IsDepreciable
	}
	if req.DepreciationMonths != nil {
		item.DepreciationMonths = req.DepreciationMonths
	}
	if req.InvoiceURL != nil {
		item.InvoiceURL = trimOptional(req.InvoiceURL)
	}
	if err := validateAsset(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.assetrepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, item.BuildingID)
	if previousBuilding != item.BuildingID {
		s.invalidate(ctx, previousBuilding)
	}
	return item, nil
}

func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	assetID, err := expensedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return expensedomain.ErrInvalidID
	}
	item, err := s.assetrepo.FindOne(ctx, &expensedomain.AssetLog{ID: assetID})
	if err != nil {
		return err
	}
	if item == nil {
		return expensedomain.ErrAssetNotFound
	}

	if err := s.assetrepo.Delete(ctx, int64(item.ID)); err != nil {
		return err
	}
	s.invalidate(ctx, item.BuildingID)
	return nil
}

func (s *Service) OpexTotal(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	amounts, err := s.repo.OpexAmounts(ctx, s.db, buildingID, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Sum(amounts...), nil
}

func (s *Service) DepreciableAssets(ctx context.Context, buildingID snowflake.ID) ([]expensedomain.AssetLog, error) {
	return s.repo.DepreciableAssets(ctx, s.db, buildingID)
}

// resolveCategory applies the configured default to an empty code. Any other
// code must exist in the registry for the ledger's type.
func (s *Service) resolveCategory(ctx context.Context, categoryType categorydomain.CategoryType, code string) (string, error) {
	code = strings.TrimSpace(code)
	fallback := s.finance.Get().DefaultCategory
	if code == "" || code == fallback {
		return fallback, nil
	}

	if _, err := s.categories.Get(ctx, categoryType, code); err != nil {
		if errors.Is(err, categorydomain.ErrNotFound) {
			return "", expensedomain.ErrInvalidCategory
		}
		return "", err
	}
	return code, nil
}

func (s *Service) requireBuilding(ctx context.Context, raw string) (snowflake.ID, error) {
	buildingID, err := expensedomain.ParseID(strings.TrimSpace(raw))
	if err != nil || buildingID == 0 {
		return 0, expensedomain.ErrInvalidBuilding
	}
	building, err := s.property.FindBuilding(ctx, buildingID)
	if err != nil {
		return 0, err
	}
	if building == nil {
		return 0, expensedomain.ErrBuildingNotFound
	}
	return buildingID, nil
}

func (s *Service) invalidate(ctx context.Context, buildingID snowflake.ID) {
	if err := s.invalidator.InvalidateBuilding(ctx, buildingID); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("building_id", buildingID.String()), zap.Error(err))
	}
}

func parseOptionalBuilding(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := expensedomain.ParseID(raw)
	if err != nil {
		return 0, expensedomain.ErrInvalidBuilding
	}
	return id, nil
}

func validatePeriod(year, month int) error {
	if year <= 0 {
		return expensedomain.ErrInvalidYear
	}
	if !period.ValidMonth(month) {
		return expensedomain.ErrInvalidMonth
	}
	return nil
}

func validateAsset(a *expensedomain.AssetLog) error {
	if a.IsDepreciable && (a.DepreciationMonths == nil || *a.DepreciationMonths <= 0) {
		return expensedomain.ErrInvalidDepreciation
	}
	if a.DepreciationMonths != nil && *a.DepreciationMonths < 0 {
		return expensedomain.ErrInvalidDepreciation
	}
	return nil
}

func listOptions(page pagination.Pagination) []option.QueryOption {
	return []option.QueryOption{
		option.ApplyPagination(page),
		option.WithSortBy(option.QuerySortBy{OrderBy: "desc"}),
	}
}

func buildPage[T any](items []*T, page pagination.Pagination, id func(T) snowflake.ID) expensedomain.ListResponse[T] {
	values := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			values = append(values, *item)
		}
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = pagination.DefaultPageSize
	}
	if limit > pagination.MaxPageSize {
		limit = pagination.MaxPageSize
	}
	values, info := pagination.BuildCursorPageInfo(values, limit, func(item T) string {
		return id(item).String()
	})
	return expensedomain.ListResponse[T]{PageInfo: info, Items: values}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
