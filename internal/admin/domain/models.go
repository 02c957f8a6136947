// Package domain contains persistence models for admin accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Admin is one property manager account. Every room, tenant and rent
// record is scoped to exactly one admin.
type Admin struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	Name         string       `gorm:"type:text;not null"`
	Email        string       `gorm:"type:text;not null;uniqueIndex:ux_admin_email"`
	PasswordHash string       `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Admin) TableName() string { return "admins" }
