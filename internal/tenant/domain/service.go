package domain

import (
	"context"
	"errors"
	"time"
)

type CreateTenantRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	RoomID      string     `json:"room_id"`
	JoiningDate *time.Time `json:"joining_date,omitempty"`
}

type UpdateTenantRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Email  *string `json:"email,omitempty"`
	RoomID *string `json:"room_id,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type ListTenantRequest struct {
	ActiveOnly bool `form:"active_only"`
}

type ListTenantResponse struct {
	Tenants []Tenant `json:"tenants"`
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (Tenant, error)
	GetByID(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context, req ListTenantRequest) (ListTenantResponse, error)
	Update(ctx context.Context, id string, req UpdateTenantRequest) (Tenant, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidAdmin   = errors.New("invalid_admin")
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidRoom    = errors.New("invalid_room")
	ErrTenantNotFound = errors.New("tenant_not_found")
	ErrRoomNotFound   = errors.New("room_not_found")
	ErrForbidden      = errors.New("forbidden")
)
