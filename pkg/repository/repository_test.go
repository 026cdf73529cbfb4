package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/smallbiznis/rentbook/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID        int64 `gorm:"primaryKey"`
	Kind      string
	Qty       int
	CreatedAt time.Time
}

func newWidgetStore(t *testing.T) Repository[widget] {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn)
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newWidgetStore(t)

	require.NoError(t, store.Create(ctx, &widget{ID: 1, Kind: "a", Qty: 3}))
	require.NoError(t, store.Create(ctx, &widget{ID: 2, Kind: "a", Qty: 5}))
	require.NoError(t, store.Create(ctx, &widget{ID: 3, Kind: "b", Qty: 7}))

	items, err := store.Find(ctx, &widget{Kind: "a"}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "qty",
		OrderBy: "asc",
		Allow:   map[string]bool{"qty": true},
	}))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)

	count, err := store.Count(ctx, &widget{}, option.ApplyOperator(option.Condition{Field: "qty", Operator: option.GTE, Value: 5}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.Update(ctx, 3, map[string]any{"qty": 0}))
	got, err := store.FindOne(ctx, &widget{ID: 3})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Qty)

	require.NoError(t, store.Delete(ctx, 3))
	got, err = store.FindOne(ctx, &widget{ID: 3})
	require.NoError(t, err)
	assert.Nil(t, got)
}
