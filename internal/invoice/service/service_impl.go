package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/cache"
	"github.com/smallbiznis/rentbook/internal/config"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	obsmetrics "github.com/smallbiznis/rentbook/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/internal/providers/pdf"
	"github.com/smallbiznis/rentbook/internal/ratelimit"
	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/smallbiznis/rentbook/pkg/db/option"
	"github.com/smallbiznis/rentbook/pkg/money"
	"github.com/smallbiznis/rentbook/pkg/period"
	"github.com/smallbiznis/rentbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	sourceGenerated = "generated"
	sourceManual    = "manual"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Lease    leasedomain.Service
	Property propertydomain.Service
	Meter    meterdomain.Service

	Finance     *config.FinanceConfigHolder `optional:"true"`
	Lock        *ratelimit.GenerationLock   `optional:"true"`
	Metrics     *obsmetrics.Metrics         `optional:"true"`
	Invalidator cache.Invalidator           `optional:"true"`
	PDF         pdf.Provider                `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	invoicerepo repository.Repository[invoicedomain.Invoice]
	lease       leasedomain.Service
	property    propertydomain.Service
	meter       meterdomain.Service
	finance     *config.FinanceConfigHolder
	lock        *ratelimit.GenerationLock
	metrics     *obsmetrics.Metrics
	invalidator cache.Invalidator
	pdf         pdf.Provider
}

func NewService(p ServiceParam) invoicedomain.Service {
	invalidator := p.Invalidator
	if invalidator == nil {
		invalidator = cache.NoopSummaryCache{}
	}
	renderer := p.PDF
	if renderer == nil {
		renderer = pdf.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		lease:       p.Lease,
		property:    p.Property,
		meter:       p.Meter,
		finance:     p.Finance,
		lock:        p.Lock,
		metrics:     p.Metrics,
		invalidator: invalidator,
		pdf:         renderer,
	}
}

func (s *Service) ComputeUtilityAmounts(ctx context.Context, contractID snowflake.ID, year, month int) (invoicedomain.UtilityAmounts, error) {
	amounts := invoicedomain.ZeroUtilityAmounts()

	contract, err := s.lease.FindContract(ctx, contractID)
	if err != nil {
		return amounts, err
	}
	if contract == nil {
		return amounts, nil
	}
	room, err := s.property.FindRoom(ctx, contract.RoomID)
	if err != nil {
		return amounts, err
	}
	if room == nil {
		return amounts, nil
	}

	usage, err := s.meter.ConsumptionForPeriod(ctx, room.ID, year, month)
	if err != nil {
		return amounts, err
	}

	rates := room.Rates()
	amounts.ElectricityAmount = usage.ElectricityUsage.Mul(rates.ElectricityUnitPrice)
	amounts.WaterAmount = usage.WaterUsage.Mul(rates.WaterUnitPrice)
	amounts.WifiFee = rates.WifiFee
	amounts.GarbageFee = rates.GarbageFee
	amounts.ParkingFee = rates.ParkingFee
	return amounts, nil
}

func (s *Service) GenerateMonthlyInvoice(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Invoice, error) {
	contractID, err := invoicedomain.ParseID(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return nil, invoicedomain.ErrInvalidContract
	}
	if err := validatePeriod(req.Year, req.Month); err != nil {
		return nil, err
	}
	if err := validateOverrides(req.Overrides); err != nil {
		return nil, err
	}
	overrides, err := normalizeFees(req.OtherFees)
	if err != nil {
		return nil, err
	}

	contract, err := s.lease.FindContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, invoicedomain.ErrContractNotFound
	}

	if err := s.ensurePeriodFree(ctx, contractID, req.Year, req.Month); err != nil {
		return nil, err
	}

	release, ok, err := s.lock.Acquire(ctx, contractID, req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	defer release()
	if !ok {
		return nil, s.conflict(ctx, contractID, req.Year, req.Month)
	}

	utilities, err := s.ComputeUtilityAmounts(ctx, contractID, req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	fees := s.defaultFees(utilities)
	for key, value := range overrides {
		fees[key] = value
	}

	now := time.Now().UTC()
	item := &invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		ContractID:        contractID,
		Year:              req.Year,
		Month:             req.Month,
		Status:            invoicedomain.InvoiceStatusUnpaid,
		RentAmount:        pick(req.RentAmount, contract.ActualRentPrice),
		ElectricityAmount: pick(req.ElectricityAmount, utilities.ElectricityAmount),
		WaterAmount:       pick(req.WaterAmount, utilities.WaterAmount),
		OtherFees:         fees,
		DiscountAmount:    pick(req.DiscountAmount, decimal.Zero),
		DiscountReason:    trimOptional(req.DiscountReason),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.insert(ctx, item); err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceGenerated(ctx, sourceGenerated)
	s.log.Info("generated monthly invoice",
		zap.String("invoice_id", item.ID.String()),
		zap.String("contract_id", contractID.String()),
		zap.String("period", period.New(req.Year, req.Month).String()),
		zap.String("total", item.Total().String()),
	)
	s.invalidateContract(ctx, contract)
	return item, nil
}

func (s *Service) CreateInvoice(ctx context.Context, req invoicedomain.CreateRequest) (*invoicedomain.Invoice, error) {
	contractID, err := invoicedomain.ParseID(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return nil, invoicedomain.ErrInvalidContract
	}
	if err := validatePeriod(req.Year, req.Month); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusUnpaid
	}
	if !status.Valid() {
		return nil, invoicedomain.ErrInvalidStatus
	}
	for _, amount := range []decimal.Decimal{req.RentAmount, req.ElectricityAmount, req.WaterAmount, req.DiscountAmount} {
		if amount.IsNegative() {
			return nil, invoicedomain.ErrInvalidAmount
		}
	}
	fees, err := normalizeFees(req.OtherFees)
	if err != nil {
		return nil, err
	}

	contract, err := s.lease.FindContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, invoicedomain.ErrContractNotFound
	}
	if err := s.ensurePeriodFree(ctx, contractID, req.Year, req.Month); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		ContractID:        contractID,
		Year:              req.Year,
		Month:             req.Month,
		Status:            status,
		RentAmount:        req.RentAmount,
		ElectricityAmount: req.ElectricityAmount,
		WaterAmount:       req.WaterAmount,
		OtherFees:         fees,
		DiscountAmount:    req.DiscountAmount,
		DiscountReason:    trimOptional(req.DiscountReason),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if status == invoicedomain.InvoiceStatusPaid {
		item.PaidAt = &now
	}

	if err := s.insert(ctx, item); err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceGenerated(ctx, sourceManual)
	s.invalidateContract(ctx, contract)
	return item, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, req invoicedomain.UpdateRequest) (*invoicedomain.Invoice, error) {
	item, err := s.GetInvoice(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, invoicedomain.ErrInvalidStatus
		}
		if *req.Status != item.Status {
			item.Status = *req.Status
			if item.Status == invoicedomain.InvoiceStatusPaid {
				item.PaidAt = &now
			} else {
				item.PaidAt = nil
			}
		}
	}

	for _, patch := range []struct {
		value  *decimal.Decimal
		target *decimal.Decimal
	}{
		{req.RentAmount, &item.RentAmount},
		{req.ElectricityAmount, &item.ElectricityAmount},
		{req.WaterAmount, &item.WaterAmount},
		{req.DiscountAmount, &item.DiscountAmount},
	} {
		if patch.value == nil {
			continue
		}
		if patch.value.IsNegative() {
			return nil, invoicedomain.ErrInvalidAmount
		}
		*patch.target = *patch.value
	}
	if req.OtherFees != nil {
		fees, err := normalizeFees(req.OtherFees)
		if err != nil {
			return nil, err
		}
		item.OtherFees = fees
	}
	if req.DiscountReason != nil {
		item.DiscountReason = trimOptional(req.DiscountReason)
	}

	item.UpdatedAt = now
	if err := s.invoicerepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if contract, err := s.lease.FindContract(ctx, item.ContractID); err == nil && contract != nil {
		s.invalidateContract(ctx, contract)
	}
	return item, nil
}

func (s *Service) ListInvoices(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := &invoicedomain.Invoice{Year: req.Year, Month: req.Month}
	if raw := strings.TrimSpace(req.ContractID); raw != "" {
		contractID, err := invoicedomain.ParseID(raw)
		if err != nil || contractID <= 0 {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidContract
		}
		filter.ContractID = contractID
	}
	if req.Month != 0 && !period.ValidMonth(req.Month) {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidMonth
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := invoicedomain.InvoiceStatus(strings.ToLower(raw))
		if !status.Valid() {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, err := s.invoicerepo.Find(ctx, filter, option.OrderBy("year DESC", "month DESC", "id DESC"))
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{Invoices: invoices}, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := invoicedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	item, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return item, nil
}

func (s *Service) InvoicesForContracts(ctx context.Context, contractIDs []snowflake.ID, year, month int) ([]invoicedomain.Invoice, error) {
	if len(contractIDs) == 0 {
		return nil, nil
	}
	var items []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Where("contract_id IN ? AND year = ? AND month = ?", contractIDs, year, month).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) ensurePeriodFree(ctx context.Context, contractID snowflake.ID, year, month int) error {
	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ContractID: contractID, Year: year, Month: month})
	if err != nil {
		return err
	}
	if existing != nil {
		return s.conflict(ctx, contractID, year, month)
	}
	return nil
}

// insert relies on the unique (contract, year, month) index; a lost race
// surfaces as the same conflict as the pre-check.
func (s *Service) insert(ctx context.Context, item *invoicedomain.Invoice) error {
	if err := s.invoicerepo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.conflict(ctx, item.ContractID, item.Year, item.Month)
		}
		return err
	}
	return nil
}

func (s *Service) conflict(ctx context.Context, contractID snowflake.ID, year, month int) error {
	s.metrics.RecordInvoiceConflict(ctx)
	return &invoicedomain.InvoiceExistsError{ContractID: contractID, Year: year, Month: month}
}

func (s *Service) defaultFees(utilities invoicedomain.UtilityAmounts) datatypes.JSONMap {
	fees := datatypes.JSONMap{}
	for _, key := range s.finance.Get().FeeKeys {
		fees[key] = decimal.Zero
	}
	fees[invoicedomain.FeeGarbage] = utilities.GarbageFee
	fees[invoicedomain.FeeCleaning] = decimal.Zero
	fees[invoicedomain.FeeMiscellaneous] = decimal.Zero
	fees[invoicedomain.FeeWifi] = utilities.WifiFee
	fees[invoicedomain.FeeParking] = utilities.ParkingFee
	return fees
}

func (s *Service) invalidateContract(ctx context.Context, contract *leasedomain.Contract) {
	room, err := s.property.FindRoom(ctx, contract.RoomID)
	if err != nil || room == nil {
		return
	}
	if err := s.invalidator.InvalidateBuilding(ctx, room.BuildingID); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("building_id", room.BuildingID.String()), zap.Error(err))
	}
}

func validatePeriod(year, month int) error {
	if year <= 0 {
		return invoicedomain.ErrInvalidYear
	}
	if !period.ValidMonth(month) {
		return invoicedomain.ErrInvalidMonth
	}
	return nil
}

func validateOverrides(o invoicedomain.Overrides) error {
	for _, amount := range []*decimal.Decimal{o.RentAmount, o.ElectricityAmount, o.WaterAmount, o.DiscountAmount} {
		if amount != nil && amount.IsNegative() {
			return invoicedomain.ErrInvalidAmount
		}
	}
	return nil
}

func pick(override *decimal.Decimal, computed decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return computed
}

// normalizeFees coerces every value to an amount; non-numeric values become
// zero and negative amounts are rejected.
func normalizeFees(input map[string]any) (datatypes.JSONMap, error) {
	output := datatypes.JSONMap{}
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		amount := money.Coerce(value)
		if amount.IsNegative() {
			return nil, invoicedomain.ErrInvalidAmount
		}
		output[key] = amount
	}
	return output, nil
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
