package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/config"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	"github.com/smallbiznis/rentbook/internal/meter/repository"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	propertyservice "github.com/smallbiznis/rentbook/internal/property/service"
	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	svc  meterdomain.Service
	room *propertydomain.Room
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&propertydomain.Building{}, &propertydomain.Room{}, &meterdomain.MeterReading{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	property := propertyservice.NewService(propertyservice.ServiceParam{DB: conn, Log: log, GenID: node})
	ctx := context.Background()
	building, err := property.CreateBuilding(ctx, propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)
	room, err := property.CreateRoom(ctx, propertydomain.CreateRoomRequest{BuildingID: building.ID.String(), RoomNumber: "101"})
	require.NoError(t, err)

	svc := New(Params{
		DB:       conn,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Property: property,
		Finance:  config.NewStaticFinanceConfigHolder(config.DefaultFinanceConfig()),
	})
	return fixture{svc: svc, room: room, logs: logs}
}

func (f fixture) record(t *testing.T, year, month int, electricity, water int64) *meterdomain.MeterReading {
	t.Helper()
	item, err := f.svc.RecordReading(context.Background(), meterdomain.RecordRequest{
		RoomID:             f.room.ID.String(),
		Year:               year,
		Month:              month,
		ElectricityReading: decimal.NewFromInt(electricity),
		WaterReading:       decimal.NewFromInt(water),
	})
	require.NoError(t, err)
	return item
}

func TestRecordReadingValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name string
		req  meterdomain.RecordRequest
		want error
	}{
		{"bad room", meterdomain.RecordRequest{RoomID: "x", Year: 2024, Month: 1}, meterdomain.ErrInvalidRoom},
		{"unknown room", meterdomain.RecordRequest{RoomID: "42", Year: 2024, Month: 1}, meterdomain.ErrRoomNotFound},
		{"month zero", meterdomain.RecordRequest{RoomID: f.room.ID.String(), Year: 2024, Month: 0}, meterdomain.ErrInvalidMonth},
		{"month thirteen", meterdomain.RecordRequest{RoomID: f.room.ID.String(), Year: 2024, Month: 13}, meterdomain.ErrInvalidMonth},
		{"negative", meterdomain.RecordRequest{RoomID: f.room.ID.String(), Year: 2024, Month: 1, WaterReading: decimal.NewFromInt(-1)}, meterdomain.ErrInvalidReading},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RecordReading(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecordReadingUpsertsPeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.record(t, 2024, 5, 100, 10)
	second := f.record(t, 2024, 5, 150, 12)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.NewFromInt(150).Equal(second.ElectricityReading))

	items, err := f.svc.ListReadings(ctx, meterdomain.ListRequest{RoomID: f.room.ID.String()})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConsumptionUsesPreviousMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.record(t, 2024, 4, 1000, 50)
	f.record(t, 2024, 5, 1100, 65)

	usage, err := f.svc.ConsumptionForPeriod(ctx, f.room.ID, 2024, 5)
	require.NoError(t, err)
	assert.True(t, usage.HasReading)
	assert.False(t, usage.FirstReading)
	assert.True(t, decimal.NewFromInt(100).Equal(usage.ElectricityUsage))
	assert.True(t, decimal.NewFromInt(15).Equal(usage.WaterUsage))
}

func TestConsumptionJanuaryUsesPriorDecember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.record(t, 2023, 12, 500, 40)
	f.record(t, 2024, 1, 620, 44)

	usage, err := f.svc.ConsumptionForPeriod(ctx, f.room.ID, 2024, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(usage.ElectricityUsage))
	assert.True(t, decimal.NewFromInt(4).Equal(usage.WaterUsage))
}

func TestConsumptionFirstReadingMeasuresFromZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.record(t, 2024, 3, 80, 9)

	usage, err := f.svc.ConsumptionForPeriod(ctx, f.room.ID, 2024, 3)
	require.NoError(t, err)
	assert.True(t, usage.FirstReading)
	assert.True(t, decimal.NewFromInt(80).Equal(usage.ElectricityUsage))
	assert.Equal(t, 1, f.logs.FilterMessage("no previous meter reading, measuring usage from zero").Len())
}

func TestConsumptionClampsMeterReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.record(t, 2024, 6, 9000, 300)
	f.record(t, 2024, 7, 20, 310)

	usage, err := f.svc.ConsumptionForPeriod(ctx, f.room.ID, 2024, 7)
	require.NoError(t, err)
	assert.True(t, usage.ElectricityUsage.IsZero())
	assert.True(t, decimal.NewFromInt(10).Equal(usage.WaterUsage))
}

func TestConsumptionWithoutReadingIsZero(t *testing.T) {
	f := newFixture(t)

	usage, err := f.svc.ConsumptionForPeriod(context.Background(), f.room.ID, 2024, 8)
	require.NoError(t, err)
	assert.False(t, usage.HasReading)
	assert.True(t, usage.ElectricityUsage.IsZero())
	assert.True(t, usage.WaterUsage.IsZero())
}

func TestListReadingsNewestFirstWithUsage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.record(t, 2024, 1, 100, 10)
	f.record(t, 2024, 2, 130, 11)
	f.record(t, 2024, 3, 190, 15)

	items, err := f.svc.ListReadings(ctx, meterdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].Month)
	assert.True(t, decimal.NewFromInt(60).Equal(items[0].ElectricityUsage))
	assert.True(t, items[2].FirstReading)
}

func TestDeleteReading(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item := f.record(t, 2024, 1, 100, 10)
	require.NoError(t, f.svc.DeleteReading(ctx, item.ID.String()))
	assert.ErrorIs(t, f.svc.DeleteReading(ctx, item.ID.String()), meterdomain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteReading(ctx, "nope"), meterdomain.ErrInvalidID)
}
