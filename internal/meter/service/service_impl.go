package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/config"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	"github.com/smallbiznis/rentbook/internal/observability/logger"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/pkg/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     meterdomain.Repository
	Property propertydomain.Service
	Finance  *config.FinanceConfigHolder `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     meterdomain.Repository
	genID    *snowflake.Node
	property propertydomain.Service
	finance  *config.FinanceConfigHolder
}

func New(p Params) meterdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("meter.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		property: p.Property,
		finance:  p.Finance,
	}
}

func (s *Service) RecordReading(ctx context.Context, req meterdomain.RecordRequest) (*meterdomain.MeterReading, error) {
	roomID, err := meterdomain.ParseID(strings.TrimSpace(req.RoomID))
	if err != nil || roomID == 0 {
		return nil, meterdomain.ErrInvalidRoom
	}
	if req.Year <= 0 {
		return nil, meterdomain.ErrInvalidYear
	}
	if !period.ValidMonth(req.Month) {
		return nil, meterdomain.ErrInvalidMonth
	}
	if req.ElectricityReading.IsNegative() || req.WaterReading.IsNegative() {
		return nil, meterdomain.ErrInvalidReading
	}

	room, err := s.property.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, meterdomain.ErrRoomNotFound
	}

	var note *string
	if req.Note != nil {
		trimmed := strings.TrimSpace(*req.Note)
		if trimmed != "" {
			note = &trimmed
		}
	}

	now := time.Now().UTC()
	item := &meterdomain.MeterReading{
		ID:                 s.genID.Generate(),
		RoomID:             roomID,
		Year:               req.Year,
		Month:              req.Month,
		ElectricityReading: req.ElectricityReading,
		WaterReading:       req.WaterReading,
		Note:               note,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Upsert(ctx, s.db, item); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindForPeriod(ctx, s.db, roomID, req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return item, nil
	}
	return stored, nil
}

func (s *Service) ConsumptionForPeriod(ctx context.Context, roomID snowflake.ID, year, month int) (meterdomain.Consumption, error) {
	current, err := s.repo.FindForPeriod(ctx, s.db, roomID, year, month)
	if err != nil {
		return meterdomain.Consumption{}, err
	}
	if current == nil {
		return meterdomain.Consumption{
			ElectricityUsage: decimal.Zero,
			WaterUsage:       decimal.Zero,
		}, nil
	}

	prev := period.New(year, month).Previous()
	previous, err := s.repo.FindForPeriod(ctx, s.db, roomID, prev.Year, prev.Month)
	if err != nil {
		return meterdomain.Consumption{}, err
	}

	usage := consumption(*current, previous)
	if usage.FirstReading && s.finance.Get().WarnFirstReading {
		logger.WithPeriod(s.log, year, month).Warn("no previous meter reading, measuring usage from zero",
			zap.String("room_id", roomID.String()),
		)
	}
	return usage, nil
}

func (s *Service) ListReadings(ctx context.Context, req meterdomain.ListRequest) ([]meterdomain.ReadingResponse, error) {
	var roomID snowflake.ID
	if raw := strings.TrimSpace(req.RoomID); raw != "" {
		parsed, err := meterdomain.ParseID(raw)
		if err != nil {
			return nil, meterdomain.ErrInvalidRoom
		}
		roomID = parsed
	}

	items, err := s.repo.List(ctx, s.db, roomID)
	if err != nil {
		return nil, err
	}

	type periodKey struct {
		room  snowflake.ID
		index int
	}
	byPeriod := make(map[periodKey]meterdomain.MeterReading, len(items))
	for _, item := range items {
		byPeriod[periodKey{item.RoomID, period.New(item.Year, item.Month).Index()}] = item
	}

	resp := make([]meterdomain.ReadingResponse, 0, len(items))
	for _, item := range items {
		var previous *meterdomain.MeterReading
		if prev, ok := byPeriod[periodKey{item.RoomID, period.New(item.Year, item.Month).Index() - 1}]; ok {
			previous = &prev
		}
		usage := consumption(item, previous)
		resp = append(resp, meterdomain.ReadingResponse{
			MeterReading:     item,
			ElectricityUsage: usage.ElectricityUsage,
			WaterUsage:       usage.WaterUsage,
			FirstReading:     usage.FirstReading,
		})
	}
	return resp, nil
}

func (s *Service) DeleteReading(ctx context.Context, id string) error {
	readingID, err := meterdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return meterdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return err
	}
	if item == nil {
		return meterdomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, readingID)
}

// consumption measures from zero when previous is nil; usage never goes below zero.
func consumption(current meterdomain.MeterReading, previous *meterdomain.MeterReading) meterdomain.Consumption {
	baseElectricity, baseWater := decimal.Zero, decimal.Zero
	if previous != nil {
		baseElectricity = previous.ElectricityReading
		baseWater = previous.WaterReading
	}
	return meterdomain.Consumption{
		ElectricityUsage: decimal.Max(decimal.Zero, current.ElectricityReading.Sub(baseElectricity)),
		WaterUsage:       decimal.Max(decimal.Zero, current.WaterReading.Sub(baseWater)),
		HasReading:       true,
		FirstReading:     previous == nil,
	}
}
