package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentbook/internal/cache"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
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

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	TenantRepo  leasedomain.TenantRepository
	Property    propertydomain.Service
	Invalidator cache.Invalidator `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	contractrepo repository.Repository[leasedomain.Contract]
	tenantrepo   leasedomain.TenantRepository
	property     propertydomain.Service
	invalidator  cache.Invalidator
}

func New(p Params) leasedomain.Service {
	invalidator := p.Invalidator
	if invalidator == nil {
		invalidator = cache.NoopSummaryCache{}
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("lease.service"),
		genID: p.GenID,

		contractrepo: repository.ProvideStore[leasedomain.Contract](p.DB),
		tenantrepo:   p.TenantRepo,
		property:     p.Property,
		invalidator:  invalidator,
	}
}

func (s *Service) ListContracts(ctx context.Context, req leasedomain.ListContractsRequest) ([]leasedomain.Contract, error) {
	filter := &leasedomain.Contract{}
	if raw := strings.TrimSpace(req.RoomID); raw != "" {
		roomID, err := leasedomain.ParseID(raw)
		if err != nil {
			return nil, leasedomain.ErrInvalidRoom
		}
		filter.RoomID = roomID
	}

	items, err := s.contractrepo.Find(ctx, filter,
		option.WithSortBy(option.QuerySortBy{SortBy: "start_date", OrderBy: "desc", Allow: map[string]bool{"start_date": true}}),
	)
	if err != nil {
		return nil, err
	}

	contracts := make([]leasedomain.Contract, 0, len(items))
	for _, item := range items {
		if item != nil {
			contracts = append(contracts, *item)
		}
	}
	return contracts, nil
}

func (s *Service) GetContract(ctx context.Context, id string) (*leasedomain.Contract, error) {
	contractID, err := leasedomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, leasedomain.ErrInvalidID
	}
	item, err := s.FindContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, leasedomain.ErrContractNotFound
	}
	return item, nil
}

func (s *Service) FindContract(ctx context.Context, id snowflake.ID) (*leasedomain.Contract, error) {
	if id == 0 {
		return nil, nil
	}
	return s.contractrepo.FindOne(ctx, &leasedomain.Contract{ID: id})
}

func (s *Service) ContractIDsForRooms(ctx context.Context, roomIDs []snowflake.ID) ([]snowflake.ID, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var ids []snowflake.ID
	err := s.db.WithContext(ctx).Model(&leasedomain.Contract{}).
		Where("room_id IN ?", roomIDs).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) CreateContract(ctx context.Context, req leasedomain.CreateContractRequest) (*leasedomain.Contract, error) {
	room, err := s.requireRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	start, err := period.ParseDate(req.StartDate)
	if err != nil {
		return nil, leasedomain.ErrInvalidDates
	}
	end, err := period.ParseDate(req.EndDate)
	if err != nil {
		return nil, leasedomain.ErrInvalidDates
	}

	now := time.Now().UTC()
	item := &leasedomain.Contract{
		ID:              s.genID.Generate(),
		RoomID:          room.ID,
		StartDate:       start,
		EndDate:         end,
		ActualRentPrice: req.ActualRentPrice,
		DepositAmount:   req.DepositAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateContract(item); err != nil {
		return nil, err
	}

	if err := s.contractrepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateContract(ctx context.Context, req leasedomain.UpdateContractRequest) (*leasedomain.Contract, error) {
	item, err := s.GetContract(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	previousRoom := item.RoomID

	if req.RoomID != nil {
		room, err := s.requireRoom(ctx, *req.RoomID)
		if err != nil {
			return nil, err
		}
		item.RoomID = room.ID
	}
	if req.StartDate != nil {
		start, err := period.ParseDate(*req.StartDate)
		if err != nil {
			return nil, leasedomain.ErrInvalidDates
		}
		item.StartDate = start
	}
	if req.EndDate != nil {
		end, err := period.ParseDate(*req.EndDate)
		if err != nil {
			return nil, leasedomain.ErrInvalidDates
		}
		item.EndDate = end
	}
	if req.ActualRentPrice != nil {
		item.ActualRentPrice = *req.ActualRentPrice
	}
	if req.DepositAmount != nil {
		item.DepositAmount = req.DepositAmount
	}
	if err := validateContract(item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.contractrepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if previousRoom != item.RoomID {
		s.invalidateRoom(ctx, previousRoom)
		s.invalidateRoom(ctx, item.RoomID)
	}
	return item, nil
}

func (s *Service) GetTenant(ctx context.Context, contractID string) (*leasedomain.Tenant, error) {
	id, err := leasedomain.ParseID(strings.TrimSpace(contractID))
	if err != nil {
		return nil, leasedomain.ErrInvalidContract
	}
	item, err := s.tenantrepo.FindByContract(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, leasedomain.ErrTenantNotFound
	}
	return item, nil
}

func (s *Service) ListTenants(ctx context.Context, req leasedomain.ListTenantsRequest) ([]leasedomain.Tenant, error) {
	filter := leasedomain.ListTenantsFilter{
		Name: strings.ToLower(strings.TrimSpace(req.Name)),
	}
	if raw := strings.TrimSpace(req.ResidenceStatus); raw != "" {
		status := leasedomain.ResidenceStatus(raw)
		if !status.Valid() {
			return nil, leasedomain.ErrInvalidResidenceStatus
		}
		filter.ResidenceStatus = status
	}

	items, err := s.tenantrepo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = items[i].Masked()
	}
	return items, nil
}

func (s *Service) CreateTenant(ctx context.Context, req leasedomain.CreateTenantRequest) (*leasedomain.Tenant, error) {
	contract, err := s.GetContract(ctx, req.ContractID)
	if err != nil {
		if errors.Is(err, leasedomain.ErrInvalidID) {
			return nil, leasedomain.ErrInvalidContract
		}
		return nil, err
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, leasedomain.ErrInvalidFullName
	}

	status := req.ResidenceStatus
	if status == "" {
		status = leasedomain.ResidencePending
	}
	if !status.Valid() {
		return nil, leasedomain.ErrInvalidResidenceStatus
	}

	existing, err := s.tenantrepo.FindByContract(ctx, s.db, contract.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, leasedomain.ErrTenantExists
	}

	now := time.Now().UTC()
	item := &leasedomain.Tenant{
		ID:              s.genID.Generate(),
		ContractID:      contract.ID,
		FullName:        fullName,
		IDNumber:        trimOptional(req.IDNumber),
		IDCardFrontPath: trimOptional(req.IDCardFrontPath),
		IDCardBackPath:  trimOptional(req.IDCardBackPath),
		ResidenceStatus: status,
		Profile:         normalizeProfile(req.Profile),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.tenantrepo.Insert(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, leasedomain.ErrTenantExists
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateTenant(ctx context.Context, req leasedomain.UpdateTenantRequest) (*leasedomain.Tenant, error) {
	item, err := s.GetTenant(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	if err := applySelfFields(item, req.FullName, req.IDNumber, req.IDCardFrontPath, req.IDCardBackPath, req.Profile); err != nil {
		return nil, err
	}
	if req.ResidenceStatus != nil {
		if !req.ResidenceStatus.Valid() {
			return nil, leasedomain.ErrInvalidResidenceStatus
		}
		item.ResidenceStatus = *req.ResidenceStatus
	}
	if req.IsLocked != nil {
		item.IsLocked = *req.IsLocked
	}

	return s.saveTenant(ctx, item)
}

func (s *Service) UpdateOwnProfile(ctx context.Context, req leasedomain.SelfUpdateRequest) (*leasedomain.Tenant, error) {
	item, err := s.GetTenant(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if item.IsLocked {
		return nil, leasedomain.ErrProfileLocked
	}

	if err := applySelfFields(item, req.FullName, req.IDNumber, req.IDCardFrontPath, req.IDCardBackPath, req.Profile); err != nil {
		return nil, err
	}
	return s.saveTenant(ctx, item)
}

func (s *Service) SetLock(ctx context.Context, contractID string, locked bool) (*leasedomain.Tenant, error) {
	item, err := s.GetTenant(ctx, contractID)
	if err != nil {
		return nil, err
	}
	item.IsLocked = locked
	return s.saveTenant(ctx, item)
}

func (s *Service) saveTenant(ctx context.Context, item *leasedomain.Tenant) (*leasedomain.Tenant, error) {
	item.UpdatedAt = time.Now().UTC()
	if err := s.tenantrepo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) requireRoom(ctx context.Context, raw string) (*propertydomain.Room, error) {
	roomID, err := leasedomain.ParseID(strings.TrimSpace(raw))
	if err != nil || roomID == 0 {
		return nil, leasedomain.ErrInvalidRoom
	}
	room, err := s.property.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, leasedomain.ErrRoomNotFound
	}
	return room, nil
}

func (s *Service) invalidateRoom(ctx context.Context, roomID snowflake.ID) {
	room, err := s.property.FindRoom(ctx, roomID)
	if err != nil || room == nil {
		return
	}
	if err := s.invalidator.InvalidateBuilding(ctx, room.BuildingID); err != nil {
		s.log.Warn("summary cache invalidation failed", zap.String("building_id", room.BuildingID.String()), zap.Error(err))
	}
}

func applySelfFields(item *leasedomain.Tenant, fullName, idNumber, front, back *string, profile map[string]any) error {
	if fullName != nil {
		name := strings.TrimSpace(*fullName)
		if name == "" {
			return leasedomain.ErrInvalidFullName
		}
		item.FullName = name
	}
	if idNumber != nil {
		item.IDNumber = trimOptional(idNumber)
	}
	if front != nil {
		item.IDCardFrontPath = trimOptional(front)
	}
	if back != nil {
		item.IDCardBackPath = trimOptional(back)
	}
	if profile != nil {
		item.Profile = normalizeProfile(profile)
	}
	return nil
}

func validateContract(c *leasedomain.Contract) error {
	if c.EndDate.Before(c.StartDate) {
		return leasedomain.ErrInvalidDates
	}
	if c.ActualRentPrice.IsNegative() || money.IsNegative(c.DepositAmount) {
		return leasedomain.ErrInvalidAmount
	}
	return nil
}

func normalizeProfile(input map[string]any) datatypes.JSONMap {
	output := datatypes.JSONMap{}
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		output[key] = value
	}
	return output
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
