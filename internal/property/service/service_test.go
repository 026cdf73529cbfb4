package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
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

func newTestService(t *testing.T) (propertydomain.Service, *recordingInvalidator) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&propertydomain.Building{}, &propertydomain.Room{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	inv := &recordingInvalidator{}
	svc := NewService(ServiceParam{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Invalidator: inv,
	})
	return svc, inv
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestCreateBuildingValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "  "})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidName)

	_, err = svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A", OwnerPaymentCycle: intPtr(0)})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidPaymentCycle)

	_, err = svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A", DepositToOwner: dec("-1")})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidAmount)

	_, err = svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{
		Name:             "A",
		MasterLeaseStart: strPtr("2024-06-01"),
		MasterLeaseEnd:   strPtr("2024-01-01"),
	})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidLeaseDates)

	_, err = svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A", MasterLeaseStart: strPtr("06/01/2024")})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidLeaseDates)
}

func TestBuildingRoundTripAndAmortization(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(t)

	created, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{
		Name:              "Green Tower",
		Address:           strPtr(" 12 Main St "),
		MasterLeaseStart:  strPtr("2024-01-01"),
		MasterLeaseEnd:    strPtr("2026-12-31"),
		OwnerPaymentCycle: intPtr(6),
		DepositToOwner:    dec("60000000"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Address)
	assert.Equal(t, "12 Main St", *created.Address)

	got, err := svc.GetBuilding(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Green Tower", got.Name)
	assert.True(t, decimal.NewFromInt(10000000).Equal(got.AmortizedMasterLease()))

	updated, err := svc.UpdateBuilding(ctx, propertydomain.UpdateBuildingRequest{ID: created.ID.String(), Name: strPtr("Blue Tower")})
	require.NoError(t, err)
	assert.Equal(t, "Blue Tower", updated.Name)
	assert.Equal(t, []snowflake.ID{created.ID}, inv.ids)

	_, err = svc.GetBuilding(ctx, "not-an-id")
	assert.ErrorIs(t, err, propertydomain.ErrInvalidID)

	_, err = svc.GetBuilding(ctx, "12345")
	assert.ErrorIs(t, err, propertydomain.ErrBuildingNotFound)
}

func TestListBuildingsOrderedByName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		_, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: name})
		require.NoError(t, err)
	}

	items, err := svc.ListBuildings(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestCreateRoomRequiresExistingBuilding(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: "", RoomNumber: "101"})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidBuilding)

	_, err = svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: "999", RoomNumber: "101"})
	assert.ErrorIs(t, err, propertydomain.ErrBuildingNotFound)

	building, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)

	_, err = svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: building.ID.String(), RoomNumber: " "})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidRoomNumber)

	_, err = svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: building.ID.String(), RoomNumber: "101", Status: "rented"})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidStatus)

	_, err = svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: building.ID.String(), RoomNumber: "101", WifiFee: dec("-5")})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidAmount)

	room, err := svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{
		BuildingID:           building.ID.String(),
		RoomNumber:           "101",
		BasePrice:            dec("2500000"),
		ElectricityUnitPrice: dec("3500"),
	})
	require.NoError(t, err)
	assert.Equal(t, propertydomain.RoomEmpty, room.Status)

	rates := room.Rates()
	assert.True(t, decimal.NewFromInt(3500).Equal(rates.ElectricityUnitPrice))
	assert.True(t, rates.WaterUnitPrice.IsZero())
}

func TestListRoomsFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "B"})
	require.NoError(t, err)

	for _, req := range []propertydomain.CreateRoomRequest{
		{BuildingID: a.ID.String(), RoomNumber: "102"},
		{BuildingID: a.ID.String(), RoomNumber: "101"},
		{BuildingID: b.ID.String(), RoomNumber: "101"},
	} {
		_, err := svc.CreateRoom(ctx, req)
		require.NoError(t, err)
	}

	rooms, err := svc.ListRooms(ctx, propertydomain.ListRoomsRequest{BuildingID: a.ID.String()})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "101", rooms[0].RoomNumber)

	rooms, err = svc.ListRooms(ctx, propertydomain.ListRoomsRequest{RoomNumber: "101"})
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	ids, err := svc.RoomIDsForBuilding(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = svc.ListRooms(ctx, propertydomain.ListRoomsRequest{BuildingID: "x"})
	assert.ErrorIs(t, err, propertydomain.ErrInvalidBuilding)
}

func TestMovingRoomInvalidatesBothBuildings(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(t)

	a, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "B"})
	require.NoError(t, err)

	room, err := svc.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: a.ID.String(), RoomNumber: "1"})
	require.NoError(t, err)

	_, err = svc.UpdateRoom(ctx, propertydomain.UpdateRoomRequest{ID: room.ID.String(), RoomNumber: strPtr("1A")})
	require.NoError(t, err)
	assert.Empty(t, inv.ids)

	moved, err := svc.UpdateRoom(ctx, propertydomain.UpdateRoomRequest{ID: room.ID.String(), BuildingID: strPtr(b.ID.String())})
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.BuildingID)
	assert.ElementsMatch(t, []snowflake.ID{a.ID, b.ID}, inv.ids)
}
