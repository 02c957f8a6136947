package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() rentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rent *rentdomain.Rent) error {
	return db.WithContext(ctx).Create(rent).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rent *rentdomain.Rent) error {
	return db.WithContext(ctx).Save(rent).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*rentdomain.Rent, error) {
	var rent rentdomain.Rent
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&rent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rent, nil
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, month, year int) (*rentdomain.Rent, error) {
	var rent rentdomain.Rent
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND month = ? AND year = ?", tenantID, month, year).
		First(&rent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rent, nil
}

func (r *repo) FindMostRecentPaid(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*rentdomain.Rent, error) {
	var rent rentdomain.Rent
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND is_paid = ?", tenantID, true).
		Order("year DESC").
		Order("month DESC").
		First(&rent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rent, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, adminID snowflake.ID, filter rentdomain.ListFilter) ([]rentdomain.Rent, error) {
	query := db.WithContext(ctx).Where("admin_id = ?", adminID)

	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Month != 0 {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.AfterID != 0 {
		query = query.Where("id < ?", filter.AfterID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}

	var rents []rentdomain.Rent
	if err := query.Order("id DESC").Limit(limit).Find(&rents).Error; err != nil {
		return nil, err
	}
	return rents, nil
}

func (r *repo) ListUnpaidBefore(ctx context.Context, db *gorm.DB, adminID snowflake.ID, before time.Time) ([]rentdomain.Rent, error) {
	query := db.WithContext(ctx).
		Where("is_paid = ?", false).
		Where("due_date < ?", before)
	if adminID != 0 {
		query = query.Where("admin_id = ?", adminID)
	}

	var rents []rentdomain.Rent
	if err := query.Order("due_date ASC").Find(&rents).Error; err != nil {
		return nil, err
	}
	return rents, nil
}

func (r *repo) SweepOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE rents SET status = ?, updated_at = ? WHERE is_paid = ? AND due_date < ? AND status <> ?`,
		rentdomain.RentStatusOverdue,
		today,
		false,
		today,
		rentdomain.RentStatusOverdue,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) ListBillableTenants(ctx context.Context, db *gorm.DB, adminID snowflake.ID) ([]rentdomain.BillableTenant, error) {
	sql := `SELECT
			t.id, t.admin_id, t.room_id, t.name, t.phone, t.joining_date,
			r.rent_amount, r.floor_number, r.room_number
		FROM tenants t
		JOIN rooms r ON r.id = t.room_id
		WHERE t.active = ? AND t.joining_date IS NOT NULL`
	args := []interface{}{true}
	if adminID != 0 {
		sql += ` AND t.admin_id = ?`
		args = append(args, adminID)
	}
	sql += ` ORDER BY t.id`

	var tenants []rentdomain.BillableTenant
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) FindBillableTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*rentdomain.BillableTenant, error) {
	var tenant rentdomain.BillableTenant
	result := db.WithContext(ctx).Raw(
		`SELECT
			t.id, t.admin_id, t.room_id, t.name, t.phone, t.joining_date,
			r.rent_amount, r.floor_number, r.room_number
		FROM tenants t
		JOIN rooms r ON r.id = t.room_id
		WHERE t.id = ? AND t.active = ?`,
		tenantID,
		true,
	).Scan(&tenant)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) StampTenantSnapshot(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tenant rentdomain.TenantSnapshot, room rentdomain.RoomSnapshot) error {
	return db.WithContext(ctx).
		Model(&rentdomain.Rent{}).
		Where("tenant_id = ?", tenantID).
		Updates(rentdomain.Rent{
			TenantInfo:    &tenant,
			RoomInfo:      &room,
			TenantDeleted: true,
		}).Error
}
