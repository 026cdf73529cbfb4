package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/cache"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/pkg/db/option"
	"github.com/smallbiznis/rentbook/pkg/money"
	"github.com/smallbiznis/rentbook/pkg/period"
	"github.com/smallbiznis/rentbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Invalidator cache.Invalidator `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	buildingrepo repository.Repository[propertydomain.Building]
	roomrepo     repository.Repository[propertydomain.Room]
	invalidator  cache.Invalidator
}

func NewService(p ServiceParam) propertydomain.Service {
	invalidator := p.Invalidator
	if invalidator == nil {
		invalidator = cache.NoopSummaryCache{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,

		buildingrepo: repository.ProvideStore[propertydomain.Building](p.DB),
		roomrepo:     repository.ProvideStore[propertydomain.Room](p.DB),
		invalidator:  invalidator,
	}
}

func (s *Service) ListBuildings(ctx context.Context) ([]propertydomain.Building, error) {
	items, err := s.buildingrepo.Find(ctx, &propertydomain.Building{},
		option.WithSortBy(option.QuerySortBy{SortBy: "name", OrderBy: "asc", Allow: map[string]bool{"name": true}}),
	)
	if err != nil {
		return nil, err
	}
	return derefAll(items), nil
}

func (s *Service) GetBuilding(ctx context.Context, id string) (*propertydomain.Building, error) {
	buildingID, err := propertydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, propertydomain.ErrInvalidID
	}
	item, err := s.FindBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, propertydomain.ErrBuildingNotFound
	}
	return item, nil
}

func (s *Service) FindBuilding(ctx context.Context, id snowflake.ID) (*propertydomain.Building, error) {
	if id == 0 {
		return nil, nil
	}
	return s.buildingrepo.FindOne(ctx, &propertydomain.Building{ID: id})
}

func (s *Service) CreateBuilding(ctx context.Context, req propertydomain.CreateBuildingRequest) (*propertydomain.Building, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, propertydomain.ErrInvalidName
	}

	start, err := period.ParseOptionalDate(req.MasterLeaseStart)
	if err != nil {
		return nil, propertydomain.ErrInvalidLeaseDates
	}
	end, err := period.ParseOptionalDate(req.MasterLeaseEnd)
	if err != nil {
		return nil, propertydomain.ErrInvalidLeaseDates
	}

	now := time.Now().UTC()
	item := &propertydomain.Building{
		ID:                s.genID.Generate(),
		Name:              name,
		Address:           trimOptional(req.Address),
		MasterLeaseStart:  start,
		MasterLeaseEnd:    end,
		OwnerPaymentCycle: req.OwnerPaymentCycle,
		DepositToOwner:    req.DepositToOwner,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := validateBuilding(item); err != nil {
		return nil, err
	}

	if err := s.buildingrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateBuilding(ctx context.Context, req propertydomain.UpdateBuildingRequest) (*propertydomain.Building, error) {
	item, err := s.GetBuilding(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, propertydomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Address != nil {
		item.Address = trimOptional(req.Address)
	}
	if req.MasterLeaseStart != nil {
		start, err := period.ParseOptionalDate(req.MasterLeaseStart)
		if err != nil {
			return nil, propertydomain.ErrInvalidLeaseDates
		}
		item.MasterLeaseStart = start
	}
	if req.MasterLeaseEnd != nil {
		end, err := period.ParseOptionalDate(req.MasterLeaseEnd)
		if err != nil {
			return nil, propertydomain.ErrInvalidLeaseDates
		}
		item.MasterLeaseEnd = end
	}
	if req.OwnerPaymentCycle != nil {
		item.OwnerPaymentCycle = req.OwnerPaymentCycle
	}
	if req.DepositToOwner != nil {
		item.DepositToOwner = req.DepositToOwner
	}
	if err := validateBuilding(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.buildingrepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.ID)
	return item, nil
}

func (s *Service) ListRooms(ctx context.Context, req propertydomain.ListRoomsRequest) ([]propertydomain.Room, error) {
	filter := &propertydomain.Room{}
	if raw := strings.TrimSpace(req.BuildingID); raw != "" {
		buildingID, err := propertydomain.ParseID(raw)
		if err != nil {
			return nil, propertydomain.ErrInvalidBuilding
		}
		filter.BuildingID = buildingID
	}
	if number := strings.TrimSpace(req.RoomNumber); number != "" {
		filter.RoomNumber = number
	}

	items, err := s.roomrepo.Find(ctx, filter,
		option.WithSortBy(option.QuerySortBy{SortBy: "room_number", OrderBy: "asc", Allow: map[string]bool{"room_number": true}}),
	)
	if err != nil {
		return nil, err
	}
	return derefAll(items), nil
}

func (s *Service) GetRoom(ctx context.Context, id string) (*propertydomain.Room, error) {
	roomID, err := propertydomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, propertydomain.ErrInvalidID
	}
	item, err := s.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, propertydomain.ErrRoomNotFound
	}
	return item, nil
}

func (s *Service) FindRoom(ctx context.Context, id snowflake.ID) (*propertydomain.Room, error) {
	if id == 0 {
		return nil, nil
	}
	return s.roomrepo.FindOne(ctx, &propertydomain.Room{ID: id})
}

func (s *Service) RoomIDsForBuilding(ctx context.Context, buildingID snowflake.ID) ([]snowflake.ID, error) {
	if buildingID == 0 {
		return nil, nil
	}
	var ids []snowflake.ID
	err := s.db.WithContext(ctx).Model(&propertydomain.Room{}).
		Where("building_id = ?", buildingID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) CreateRoom(ctx context.Context, req propertydomain.CreateRoomRequest) (*propertydomain.Room, error) {
	buildingID, err := s.requireBuilding(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.RoomNumber)
	if number == "" {
		return nil, propertydomain.ErrInvalidRoomNumber
	}

	status := req.Status
	if status == "" {
		status = propertydomain.RoomEmpty
	}

	now := time.Now().UTC()
	item := &propertydomain.Room{
		ID:                   s.genID.Generate(),
		BuildingID:           buildingID,
		RoomNumber:           number,
		Status:               status,
		BasePrice:            req.BasePrice,
		ElectricityUnitPrice: req.ElectricityUnitPrice,
		WaterUnitPrice:       req.WaterUnitPrice,
		WifiFee:              req.WifiFee,
		GarbageFee:           req.GarbageFee,
		ParkingFee:           req.ParkingFee,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := validateRoom(item); err != nil {
		return nil, err
	}

	if err := s.roomrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateRoom(ctx context.Context, req propertydomain.UpdateRoomRequest) (*propertydomain.Room, error) {
	item, err := s.GetRoom(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	previousBuilding := item.BuildingID

	if req.BuildingID != nil {
		buildingID, err := s.requireBuilding(ctx, *req.BuildingID)
		if err != nil {
			return nil, err
		}
		item.BuildingID = buildingID
	}
	if req.RoomNumber != nil {
		number := strings.TrimSpace(*req.RoomNumber)
		if number == "" {
			return nil, propertydomain.ErrInvalidRoomNumber
		}
		item.RoomNumber = number
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.BasePrice != nil {
		item.BasePrice = req.BasePrice
	}
	if req.ElectricityUnitPrice != nil {
		item.ElectricityUnitPrice = req.ElectricityUnitPrice
	}
	if req.WaterUnitPrice != nil {
		item.WaterUnitPrice = req.WaterUnitPrice
	}
	if req.WifiFee != nil {
		item.WifiFee = req.WifiFee
	}
	if req.GarbageFee != nil {
		item.GarbageFee = req.GarbageFee
	}
	if req.ParkingFee != nil {
		item.ParkingFee = req.ParkingFee
	}
	if err := validateRoom(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.roomrepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if previousBuilding != item.BuildingID {
		s.invalidate(ctx, previousBuilding)
		s.invalidate(ctx, item.BuildingID)
	}
	return item, nil
}

func (s *Service) requireBuilding(ctx context.Context, raw string) (snowflake.ID, error) {
	buildingID, err := propertydomain.ParseID(strings.TrimSpace(raw))
	if err != nil || buildingID == 0 {
		return 0, propertydomain.ErrInvalidBuilding
	}
	building, err := s.FindBuilding(ctx, buildingID)
	if err != nil {
		return 0, err
	}
	if building == nil {
		return 0, propertydomain.ErrBuildingNotFound
	}
	return buildingID, nil
}

func (s *Service) invalidate(ctx context.Context, buildingID snowflake.ID) {
	if err := s.invalidator.InvalidateBuilding(ctx, buildingID); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("building_id", buildingID.String()), zap.Error(err))
	}
}

func validateBuilding(b *propertydomain.Building) error {
	if b.OwnerPaymentCycle != nil && *b.OwnerPaymentCycle <= 0 {
		return propertydomain.ErrInvalidPaymentCycle
	}
	if money.IsNegative(b.DepositToOwner) {
		return propertydomain.ErrInvalidAmount
	}
	if b.MasterLeaseStart != nil && b.MasterLeaseEnd != nil && b.MasterLeaseEnd.Before(*b.MasterLeaseStart) {
		return propertydomain.ErrInvalidLeaseDates
	}
	return nil
}

func validateRoom(r *propertydomain.Room) error {
	if !r.Status.Valid() {
		return propertydomain.ErrInvalidStatus
	}
	for _, amount := range []*decimal.Decimal{
		r.BasePrice,
		r.ElectricityUnitPrice,
		r.WaterUnitPrice,
		r.WifiFee,
		r.GarbageFee,
		r.ParkingFee,
	} {
		if money.IsNegative(amount) {
			return propertydomain.ErrInvalidAmount
		}
	}
	return nil
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

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
