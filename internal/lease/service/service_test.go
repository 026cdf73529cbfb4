package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	"github.com/smallbiznis/rentbook/internal/lease/repository"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	propertyservice "github.com/smallbiznis/rentbook/internal/property/service"
	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []snowflake.ID
}

func (r *recordingInvalidator) InvalidateBuilding(_ context.Context, id snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

type fixture struct {
	svc         leasedomain.Service
	property    propertydomain.Service
	building    *propertydomain.Building
	room        *propertydomain.Room
	invalidator *recordingInvalidator
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&propertydomain.Building{},
		&propertydomain.Room{},
		&leasedomain.Contract{},
		&leasedomain.Tenant{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	property := propertyservice.NewService(propertyservice.ServiceParam{DB: conn, Log: zap.NewNop(), GenID: node})
	ctx := context.Background()
	building, err := property.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)
	room, err := property.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: building.ID.String(), RoomNumber: "101"})
	require.NoError(t, err)

	inv := &recordingInvalidator{}
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		TenantRepo:  repository.Provide(),
		Property:    property,
		Invalidator: inv,
	})
	return fixture{svc: svc, property: property, building: building, room: room, invalidator: inv}
}

func (f fixture) contract(t *testing.T, start, end string) *leasedomain.Contract {
	t.Helper()
	item, err := f.svc.CreateContract(context.Background(), leasedomain.CreateContractRequest{
		RoomID:          f.room.ID.String(),
		StartDate:       start,
		EndDate:         end,
		ActualRentPrice: decimal.NewFromInt(2500000),
	})
	require.NoError(t, err)
	return item
}

func strPtr(v string) *string { return &v }

func TestCreateContractValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateContract(ctx, leasedomain.CreateContractRequest{RoomID: "abc", StartDate: "2024-01-01", EndDate: "2024-12-31"})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidRoom)

	_, err = f.svc.CreateContract(ctx, leasedomain.CreateContractRequest{RoomID: "77", StartDate: "2024-01-01", EndDate: "2024-12-31"})
	assert.ErrorIs(t, err, leasedomain.ErrRoomNotFound)

	_, err = f.svc.CreateContract(ctx, leasedomain.CreateContractRequest{RoomID: f.room.ID.String(), StartDate: "2024-12-31", EndDate: "2024-01-01"})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidDates)

	_, err = f.svc.CreateContract(ctx, leasedomain.CreateContractRequest{RoomID: f.room.ID.String(), StartDate: "", EndDate: "2024-01-01"})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidDates)

	_, err = f.svc.CreateContract(ctx, leasedomain.CreateContractRequest{
		RoomID:          f.room.ID.String(),
		StartDate:       "2024-01-01",
		EndDate:         "2024-12-31",
		ActualRentPrice: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidAmount)
}

func TestListContractsNewestStartFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.contract(t, "2023-01-01", "2023-12-31")
	f.contract(t, "2024-01-01", "2024-12-31")

	items, err := f.svc.ListContracts(ctx, leasedomain.ListContractsRequest{RoomID: f.room.ID.String()})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2024, items[0].StartDate.Year())

	ids, err := f.svc.ContractIDsForRooms(ctx, []snowflake.ID{f.room.ID})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestUpdateContractMovingRoomInvalidatesBuildings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other, err := f.property.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "B"})
	require.NoError(t, err)
	otherRoom, err := f.property.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: other.ID.String(), RoomNumber: "201"})
	require.NoError(t, err)

	c := f.contract(t, "2024-01-01", "2024-12-31")

	rent := decimal.NewFromInt(3000000)
	updated, err := f.svc.UpdateContract(ctx, leasedomain.UpdateContractRequest{ID: c.ID.String(), ActualRentPrice: &rent})
	require.NoError(t, err)
	assert.True(t, rent.Equal(updated.ActualRentPrice))
	assert.Empty(t, f.invalidator.ids)

	updated, err = f.svc.UpdateContract(ctx, leasedomain.UpdateContractRequest{ID: c.ID.String(), RoomID: strPtr(otherRoom.ID.String())})
	require.NoError(t, err)
	assert.Equal(t, otherRoom.ID, updated.RoomID)
	assert.ElementsMatch(t, []snowflake.ID{f.building.ID, other.ID}, f.invalidator.ids)

	_, err = f.svc.UpdateContract(ctx, leasedomain.UpdateContractRequest{ID: "123"})
	assert.ErrorIs(t, err, leasedomain.ErrContractNotFound)
}

func TestTenantLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.contract(t, "2024-01-01", "2024-12-31")

	_, err := f.svc.CreateTenant(ctx, leasedomain.CreateTenantRequest{ContractID: c.ID.String(), FullName: " "})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidFullName)

	tenant, err := f.svc.CreateTenant(ctx, leasedomain.CreateTenantRequest{
		ContractID: c.ID.String(),
		FullName:   "Budi Santoso",
		IDNumber:   strPtr("3201234567890001"),
		Profile:    map[string]any{"phone": "0812", " ": "dropped"},
	})
	require.NoError(t, err)
	assert.Equal(t, leasedomain.ResidencePending, tenant.ResidenceStatus)
	assert.Equal(t, "0812", tenant.Profile["phone"])
	assert.Len(t, tenant.Profile, 1)

	_, err = f.svc.CreateTenant(ctx, leasedomain.CreateTenantRequest{ContractID: c.ID.String(), FullName: "Again"})
	assert.ErrorIs(t, err, leasedomain.ErrTenantExists)

	got, err := f.svc.GetTenant(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "3201234567890001", *got.IDNumber)

	list, err := f.svc.ListTenants(ctx, leasedomain.ListTenantsRequest{Name: "budi"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "320***001", *list[0].IDNumber)

	_, err = f.svc.ListTenants(ctx, leasedomain.ListTenantsRequest{ResidenceStatus: "moved"})
	assert.ErrorIs(t, err, leasedomain.ErrInvalidResidenceStatus)
}

func TestSelfServiceBlockedWhenLocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.contract(t, "2024-01-01", "2024-12-31")

	_, err := f.svc.CreateTenant(ctx, leasedomain.CreateTenantRequest{ContractID: c.ID.String(), FullName: "Siti"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateOwnProfile(ctx, leasedomain.SelfUpdateRequest{ContractID: c.ID.String(), FullName: strPtr("Siti Rahma")})
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", updated.FullName)

	locked, err := f.svc.SetLock(ctx, c.ID.String(), true)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	_, err = f.svc.UpdateOwnProfile(ctx, leasedomain.SelfUpdateRequest{ContractID: c.ID.String(), FullName: strPtr("Someone Else")})
	assert.ErrorIs(t, err, leasedomain.ErrProfileLocked)

	completed := leasedomain.ResidenceCompleted
	adminEdit, err := f.svc.UpdateTenant(ctx, leasedomain.UpdateTenantRequest{
		ContractID:      c.ID.String(),
		FullName:        strPtr("Siti R."),
		ResidenceStatus: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti R.", adminEdit.FullName)
	assert.Equal(t, leasedomain.ResidenceCompleted, adminEdit.ResidenceStatus)

	got, err := f.svc.GetTenant(ctx, c.ID.String())
	require.NoError(t, err)
	assert.True(t, got.IsLocked)
	assert.Equal(t, "Siti R.", got.FullName)
}
