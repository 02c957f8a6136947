// Package domain contains persistence models for tenants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is one occupant. JoiningDate anchors every billing cycle and is
// immutable once set.
type Tenant struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	AdminID     snowflake.ID `gorm:"not null;index"`
	RoomID      snowflake.ID `gorm:"not null;index"`
	Name        string       `gorm:"type:text;not null"`
	Phone       string       `gorm:"type:text"`
	Email       string       `gorm:"type:text"`
	JoiningDate *time.Time   `gorm:"index"`
	Active      bool         `gorm:"not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
