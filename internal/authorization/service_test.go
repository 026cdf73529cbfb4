package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/rentbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAdminMayManageLedgers(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	admin := Actor{Role: RoleAdmin, ID: "1"}

	for _, object := range []string{ObjectBuilding, ObjectOpex, ObjectAsset, ObjectCategory} {
		assert.NoError(t, svc.Authorize(ctx, admin, object, ActionDelete), object)
	}
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectInvoice, ActionInvoiceGenerate))
	assert.NoError(t, svc.Authorize(ctx, Actor{Role: "ADMIN"}, ObjectSummary, ActionView))
}

func TestTenantIsLimitedToOwnSurface(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	tenant := Actor{Role: RoleTenant, ID: "42", ContractID: "7"}

	assert.NoError(t, svc.Authorize(ctx, tenant, ObjectProfile, ActionUpdate))
	assert.NoError(t, svc.Authorize(ctx, tenant, ObjectInvoice, ActionView))
	assert.ErrorIs(t, svc.Authorize(ctx, tenant, ObjectInvoice, ActionUpdate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, tenant, ObjectSummary, ActionView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, tenant, ObjectTenant, ActionTenantLock), ErrForbidden)
}

func TestSubjectsAreNamespacedByRole(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.Authorize(ctx, Actor{Role: RoleTenant, ID: "9", ContractID: "1"}, ObjectProfile, ActionView))
	assert.NoError(t, svc.Authorize(ctx, Actor{Role: RoleAdmin, ID: "9"}, ObjectRoom, ActionCreate))
	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: RoleTenant, ID: "9", ContractID: "1"}, ObjectRoom, ActionCreate), ErrForbidden)
}

func TestInvalidActor(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: "guest"}, ObjectProfile, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: RoleTenant, ID: "1"}, ObjectProfile, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: RoleAdmin}, "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: RoleAdmin}, ObjectRoom, " "), ErrInvalidAction)
}
