package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	categoryrepository "github.com/smallbiznis/rentbook/internal/category/repository"
	categoryservice "github.com/smallbiznis/rentbook/internal/category/service"
	"github.com/smallbiznis/rentbook/internal/config"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	"github.com/smallbiznis/rentbook/internal/expense/repository"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	propertyservice "github.com/smallbiznis/rentbook/internal/property/service"
	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/smallbiznis/rentbook/pkg/db/pagination"
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
	svc         expensedomain.Service
	categories  categorydomain.Service
	property    propertydomain.Service
	building    *propertydomain.Building
	invalidator *recordingInvalidator
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&propertydomain.Building{},
		&propertydomain.Room{},
		&categorydomain.ExpenseCategory{},
		&expensedomain.OpexLog{},
		&expensedomain.SetupCost{},
		&expensedomain.AssetLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	property := propertyservice.NewService(propertyservice.ServiceParam{DB: conn, Log: log, GenID: node})
	categories := categoryservice.New(categoryservice.Params{DB: conn, Log: log, GenID: node, Repo: categoryrepository.Provide()})

	building, err := property.CreateBuilding(context.Background(), propertydomain.CreateBuildingRequest{Name: "A"})
	require.NoError(t, err)

	inv := &recordingInvalidator{}
	svc := New(Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Repo:        repository.Provide(),
		Property:    property,
		Categories:  categories,
		Finance:     config.NewStaticFinanceConfigHolder(config.DefaultFinanceConfig()),
		Invalidator: inv,
	})
	return fixture{svc: svc, categories: categories, property: property, building: building, invalidator: inv}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestCreateOpexDefaultsCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.svc.CreateOpex(ctx, expensedomain.CreateOpexRequest{
		BuildingID: f.building.ID.String(),
		Year:       2024,
		Month:      5,
		Amount:     decimal.NewFromInt(150000),
	})
	require.NoError(t, err)
	assert.Equal(t, "other", item.Category)
	assert.Equal(t, []snowflake.ID{f.building.ID}, f.invalidator.ids)
}

func TestCreateOpexValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	building := f.building.ID.String()

	cases := []struct {
		name string
		req  expensedomain.CreateOpexRequest
		want error
	}{
		{"missing building", expensedomain.CreateOpexRequest{Year: 2024, Month: 1}, expensedomain.ErrInvalidBuilding},
		{"unknown building", expensedomain.CreateOpexRequest{BuildingID: "99", Year: 2024, Month: 1}, expensedomain.ErrBuildingNotFound},
		{"month zero", expensedomain.CreateOpexRequest{BuildingID: building, Year: 2024, Month: 0}, expensedomain.ErrInvalidMonth},
		{"month thirteen", expensedomain.CreateOpexRequest{BuildingID: building, Year: 2024, Month: 13}, expensedomain.ErrInvalidMonth},
		{"negative", expensedomain.CreateOpexRequest{BuildingID: building, Year: 2024, Month: 1, Amount: decimal.NewFromInt(-1)}, expensedomain.ErrInvalidAmount},
		{"unknown category", expensedomain.CreateOpexRequest{BuildingID: building, Year: 2024, Month: 1, Category: "ghost"}, expensedomain.ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateOpex(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpexTotalSumsPeriodOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, req := range []expensedomain.CreateOpexRequest{
		{BuildingID: f.building.ID.String(), Year: 2024, Month: 5, Amount: decimal.RequireFromString("100000.50")},
		{BuildingID: f.building.ID.String(), Year: 2024, Month: 5, Amount: decimal.RequireFromString("49999.50")},
		{BuildingID: f.building.ID.String(), Year: 2024, Month: 6, Amount: decimal.NewFromInt(70000)},
	} {
		_, err := f.svc.CreateOpex(ctx, req)
		require.NoError(t, err)
	}

	total, err := f.svc.OpexTotal(ctx, f.building.ID, 2024, 5)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150000).Equal(total), total.String())

	empty, err := f.svc.OpexTotal(ctx, f.building.ID, 2023, 5)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	page, err := f.svc.ListOpex(ctx, expensedomain.ListOpexRequest{BuildingID: f.building.ID.String(), Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestListOpexPaginates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 1; i <= 3; i++ {
		_, err := f.svc.CreateOpex(ctx, expensedomain.CreateOpexRequest{
			BuildingID: f.building.ID.String(), Year: 2024, Month: i, Amount: decimal.NewFromInt(int64(i)),
		})
		require.NoError(t, err)
	}

	first, err := f.svc.ListOpex(ctx, expensedomain.ListOpexRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)

	second, err := f.svc.ListOpex(ctx, expensedomain.ListOpexRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, 1, second.Items[0].Month)
}

func TestUpdateAndDeleteOpex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.svc.CreateOpex(ctx, expensedomain.CreateOpexRequest{BuildingID: f.building.ID.String(), Year: 2024, Month: 1, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	amount := decimal.NewFromInt(25)
	updated, err := f.svc.UpdateOpex(ctx, expensedomain.UpdateOpexRequest{ID: item.ID.String(), Amount: &amount, Month: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, amount.Equal(updated.Amount))
	assert.Equal(t, 2, updated.Month)

	_, err = f.svc.UpdateOpex(ctx, expensedomain.UpdateOpexRequest{ID: item.ID.String(), Month: intPtr(13)})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidMonth)

	require.NoError(t, f.svc.DeleteOpex(ctx, item.ID.String()))
	assert.ErrorIs(t, f.svc.DeleteOpex(ctx, item.ID.String()), expensedomain.ErrOpexNotFound)
	assert.Len(t, f.invalidator.ids, 3)
}

func TestCategoryDeleteBlockedWhileUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	category, err := f.categories.Create(ctx, categorydomain.CreateRequest{
		Type:  categorydomain.TypeOpex,
		Code:  "electricity_common",
		Label: "Common area electricity",
	})
	require.NoError(t, err)

	item, err := f.svc.CreateOpex(ctx, expensedomain.CreateOpexRequest{
		BuildingID: f.building.ID.String(),
		Year:       2024,
		Month:      3,
		Category:   "electricity_common",
		Amount:     decimal.NewFromInt(300000),
	})
	require.NoError(t, err)
	assert.Equal(t, "electricity_common", item.Category)

	err = f.categories.Delete(ctx, category.ID.String())
	require.ErrorIs(t, err, categorydomain.ErrCategoryInUse)
	var inUse *categorydomain.CategoryInUseError
	require.ErrorAs(t, err, &inUse)
	assert.EqualValues(t, 1, inUse.Count)

	require.NoError(t, f.svc.DeleteOpex(ctx, item.ID.String()))
	require.NoError(t, f.categories.Delete(ctx, category.ID.String()))
}

func TestSetupCostLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateSetupCost(ctx, expensedomain.CreateSetupCostRequest{BuildingID: f.building.ID.String(), OccurredDate: "yesterday"})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidDate)

	item, err := f.svc.CreateSetupCost(ctx, expensedomain.CreateSetupCostRequest{
		BuildingID:   f.building.ID.String(),
		Amount:       decimal.NewFromInt(5000000),
		OccurredDate: "2024-02-10",
		Note:         strPtr(" paint "),
	})
	require.NoError(t, err)
	assert.Equal(t, "other", item.Category)
	assert.Equal(t, "paint", *item.Note)
	assert.Empty(t, f.invalidator.ids)

	updated, err := f.svc.UpdateSetupCost(ctx, expensedomain.UpdateSetupCostRequest{ID: item.ID.String(), OccurredDate: strPtr("2024-03-01")})
	require.NoError(t, err)
	assert.Equal(t, 3, int(updated.OccurredDate.Month()))

	page, err := f.svc.ListSetupCosts(ctx, expensedomain.ListRequest{BuildingID: f.building.ID.String()})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.NoError(t, f.svc.DeleteSetupCost(ctx, item.ID.String()))
	assert.ErrorIs(t, f.svc.DeleteSetupCost(ctx, item.ID.String()), expensedomain.ErrSetupCostNotFound)
}

func TestAssetValidationAndDepreciableQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateAsset(ctx, expensedomain.CreateAssetRequest{BuildingID: f.building.ID.String(), ItemName: "AC", IsDepreciable: true})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidDepreciation)

	_, err = f.svc.CreateAsset(ctx, expensedomain.CreateAssetRequest{BuildingID: f.building.ID.String(), ItemName: " "})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidItemName)

	ac, err := f.svc.CreateAsset(ctx, expensedomain.CreateAssetRequest{
		BuildingID:         f.building.ID.String(),
		ItemName:           "AC",
		Amount:             decimal.NewFromInt(1200000),
		PurchaseDate:       strPtr("2024-01-15"),
		IsDepreciable:      true,
		DepreciationMonths: intPtr(12),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateAsset(ctx, expensedomain.CreateAssetRequest{
		BuildingID: f.building.ID.String(),
		ItemName:   "Plant",
		Amount:     decimal.NewFromInt(90000),
	})
	require.NoError(t, err)

	assets, err := f.svc.DepreciableAssets(ctx, f.building.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, ac.ID, assets[0].ID)
	assert.True(t, decimal.NewFromInt(100000).Equal(assets[0].DepreciationFor(2024, 6)))

	months := 0
	_, err = f.svc.UpdateAsset(ctx, expensedomain.UpdateAssetRequest{ID: ac.ID.String(), DepreciationMonths: &months})
	assert.ErrorIs(t, err, expensedomain.ErrInvalidDepreciation)

	require.NoError(t, f.svc.DeleteAsset(ctx, ac.ID.String()))
	assert.ErrorIs(t, f.svc.DeleteAsset(ctx, ac.ID.String()), expensedomain.ErrAssetNotFound)
}
