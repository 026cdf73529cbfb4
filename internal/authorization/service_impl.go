package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectBuilding     = "building"
	ObjectRoom         = "room"
	ObjectContract     = "contract"
	ObjectTenant       = "tenant"
	ObjectProfile      = "profile"
	ObjectMeterReading = "meter_reading"
	ObjectInvoice      = "invoice"
	ObjectOpex         = "opex"
	ObjectSetupCost    = "setup_cost"
	ObjectAsset        = "asset"
	ObjectCategory     = "category"
	ObjectSummary      = "summary"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionInvoiceGenerate = "invoice.generate"
	ActionInvoiceRender   = "invoice.render"
	ActionTenantLock      = "tenant.lock"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor Actor, object string, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := resolveActor(actor)
	if err != nil {
		return err
	}
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// resolveActor maps an actor to its casbin subject and role. Admin callers
// without an id share one subject.
func resolveActor(actor Actor) (string, string, error) {
	id := strings.TrimSpace(actor.ID)
	switch Role(strings.ToLower(strings.TrimSpace(string(actor.Role)))) {
	case RoleAdmin:
		if id == "" {
			id = "default"
		}
		return fmt.Sprintf("admin:%s", id), roleName(RoleAdmin), nil
	case RoleTenant:
		if id == "" || strings.TrimSpace(actor.ContractID) == "" {
			return "", "", ErrInvalidActor
		}
		return fmt.Sprintf("tenant:%s", id), roleName(RoleTenant), nil
	}
	return "", "", ErrInvalidActor
}

func roleName(role Role) string {
	return fmt.Sprintf("role:%s", role)
}

func (s *ServiceImpl) ensureGrouping(subject string, role string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == role {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	admin := roleName(RoleAdmin)
	tenant := roleName(RoleTenant)

	policies := [][]string{
		{tenant, ObjectProfile, ActionView},
		{tenant, ObjectProfile, ActionUpdate},
		{tenant, ObjectInvoice, ActionView},
		{tenant, ObjectInvoice, ActionInvoiceRender},

		{admin, ObjectInvoice, ActionInvoiceGenerate},
		{admin, ObjectInvoice, ActionInvoiceRender},
		{admin, ObjectTenant, ActionTenantLock},
		{admin, ObjectSummary, ActionView},
	}

	crud := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}
	for _, object := range []string{
		ObjectBuilding,
		ObjectRoom,
		ObjectContract,
		ObjectTenant,
		ObjectMeterReading,
		ObjectInvoice,
		ObjectOpex,
		ObjectSetupCost,
		ObjectAsset,
		ObjectCategory,
	} {
		for _, action := range crud {
			policies = append(policies, []string{admin, object, action})
		}
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
