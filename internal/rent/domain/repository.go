package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows rent listings. Zero values mean "no filter".
type ListFilter struct {
	TenantID snowflake.ID
	Month    int
	Year     int
	Status   RentStatus
	IsPaid   *bool
	AfterID  snowflake.ID
	Limit    int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rent *Rent) error
	Update(ctx context.Context, db *gorm.DB, rent *Rent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Rent, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, month, year int) (*Rent, error)
	FindMostRecentPaid(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*Rent, error)
	List(ctx context.Context, db *gorm.DB, adminID snowflake.ID, filter ListFilter) ([]Rent, error)
	ListUnpaidBefore(ctx context.Context, db *gorm.DB, adminID snowflake.ID, before time.Time) ([]Rent, error)
	SweepOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error)
	ListBillableTenants(ctx context.Context, db *gorm.DB, adminID snowflake.ID) ([]BillableTenant, error)
	FindBillableTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*BillableTenant, error)
	StampTenantSnapshot(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tenant TenantSnapshot, room RoomSnapshot) error
}
