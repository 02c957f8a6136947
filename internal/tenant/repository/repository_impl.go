package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tenantdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *tenantdomain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (
			id, admin_id, room_id, name, phone, email, joining_date, active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.AdminID,
		tenant.RoomID,
		tenant.Name,
		tenant.Phone,
		tenant.Email,
		tenant.JoiningDate,
		tenant.Active,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *tenantdomain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants SET room_id = ?, name = ?, phone = ?, email = ?,
			active = ?, updated_at = ? WHERE id = ?`,
		tenant.RoomID,
		tenant.Name,
		tenant.Phone,
		tenant.Email,
		tenant.Active,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM tenants WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, adminID snowflake.ID, activeOnly bool) ([]tenantdomain.Tenant, error) {
	query := db.WithContext(ctx).Where("admin_id = ?", adminID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var tenants []tenantdomain.Tenant
	if err := query.Order("name").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
