package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	admindomain "github.com/lodgeops/lodgeops/internal/admin/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() admindomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, admin *admindomain.Admin) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO admins (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, admin *admindomain.Admin) error {
	return db.WithContext(ctx).Exec(
		`UPDATE admins SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.UpdatedAt,
		admin.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*admindomain.Admin, error) {
	var admin admindomain.Admin
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*admindomain.Admin, error) {
	var admin admindomain.Admin
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
