package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentbook/internal/cache"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Mocks --

type propertyMock struct {
	propertydomain.Service
	mock.Mock
}

func (m *propertyMock) ListBuildings(ctx context.Context) ([]propertydomain.Building, error) {
	args := m.Called(ctx)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.([]propertydomain.Building), args.Error(1)
}

func (m *propertyMock) FindBuilding(ctx context.Context, id snowflake.ID) (*propertydomain.Building, error) {
	args := m.Called(ctx, id)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*propertydomain.Building), args.Error(1)
}

func (m *propertyMock) RoomIDsForBuilding(ctx context.Context, buildingID snowflake.ID) ([]snowflake.ID, error) {
	args := m.Called(ctx, buildingID)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.([]snowflake.ID), args.Error(1)
}

type expenseMock struct {
	expensedomain.Service
	mock.Mock
}

func (m *expenseMock) OpexTotal(ctx context.Context, buildingID snowflake.ID, year, month int) (decimal.Decimal, error) {
	args := m.Called(ctx, buildingID, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *expenseMock) DepreciableAssets(ctx context.Context, buildingID snowflake.ID) ([]expensedomain.AssetLog, error) {
	args := m.Called(ctx, buildingID)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.([]expensedomain.AssetLog), args.Error(1)
}

func newMockedService(property *propertyMock) *Service {
	return NewService(Params{Log: zap.NewNop(), Property: property}).(*Service)
}

func TestPortfolioSummaryPropagatesListFailure(t *testing.T) {
	property := &propertyMock{}
	boom := errors.New("connection reset")
	property.On("ListBuildings", mock.Anything).Return(nil, boom)

	_, err := newMockedService(property).PortfolioSummary(context.Background(), 2024, 5)
	assert.ErrorIs(t, err, boom)
	property.AssertExpectations(t)
}

func TestTotalRevenuePropagatesRoomLookupFailure(t *testing.T) {
	property := &propertyMock{}
	boom := errors.New("rooms unavailable")
	property.On("RoomIDsForBuilding", mock.Anything, snowflake.ID(1)).Return([]snowflake.ID{}, nil)
	property.On("RoomIDsForBuilding", mock.Anything, snowflake.ID(2)).Return(nil, boom)

	svc := newMockedService(property)

	_, err := svc.TotalRevenue(context.Background(), 2, 2024, 5)
	require.ErrorIs(t, err, boom)

	revenue, err := svc.TotalRevenue(context.Background(), 1, 2024, 5)
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(revenue))
}

func TestUnknownBuildingSkipsComputation(t *testing.T) {
	property := &propertyMock{}
	property.On("FindBuilding", mock.Anything, snowflake.ID(77)).Return(nil, nil)

	summary, err := newMockedService(property).BuildingMonthSummary(context.Background(), 77, 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(77), summary.BuildingID)
	assert.True(t, decimal.Zero.Equal(summary.Profit))
	property.AssertNotCalled(t, "RoomIDsForBuilding", mock.Anything, mock.Anything)
}

func TestSummaryComputedAcrossAnInvalidationIsNotCached(t *testing.T) {
	ctx := context.Background()
	summaries := cache.NewMemorySummaryCache(time.Minute)
	building := &propertydomain.Building{ID: 5, Name: "Annex"}

	property := &propertyMock{}
	property.On("FindBuilding", mock.Anything, snowflake.ID(5)).Return(building, nil)
	property.On("RoomIDsForBuilding", mock.Anything, snowflake.ID(5)).Return([]snowflake.ID{}, nil)

	expense := &expenseMock{}
	expense.On("DepreciableAssets", mock.Anything, snowflake.ID(5)).Return(nil, nil)
	// An opex entry is written and the building invalidated while the first
	// summary is still being computed from the old total.
	expense.On("OpexTotal", mock.Anything, snowflake.ID(5), 2024, 5).
		Return(decimal.NewFromInt(100), nil).
		Once().
		Run(func(mock.Arguments) {
			require.NoError(t, summaries.InvalidateBuilding(ctx, 5))
		})
	expense.On("OpexTotal", mock.Anything, snowflake.ID(5), 2024, 5).Return(decimal.NewFromInt(500), nil)

	svc := NewService(Params{Log: zap.NewNop(), Property: property, Expense: expense, Cache: summaries})

	first, err := svc.BuildingMonthSummary(ctx, 5, 2024, 5)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(first.Costs))

	second, err := svc.BuildingMonthSummary(ctx, 5, 2024, 5)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(second.Costs), "costs=%s", second.Costs)

	third, err := svc.BuildingMonthSummary(ctx, 5, 2024, 5)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(third.Costs))
	expense.AssertNumberOfCalls(t, "OpexTotal", 2)
}
