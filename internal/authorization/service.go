package authorization

import (
	"context"
	"errors"
)

// Role is resolved upstream and forwarded on every request.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// Actor is the caller of an operation. Tenants are bound to one contract.
type Actor struct {
	Role       Role
	ID         string
	ContractID string
}

type Service interface {
	Authorize(ctx context.Context, actor Actor, object string, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
