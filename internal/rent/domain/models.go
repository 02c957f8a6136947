// Package domain contains persistence models for rent billing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// RentStatus represents lifecycle states for a rent record.
type RentStatus string

const (
	RentStatusPending       RentStatus = "Pending"
	RentStatusPartiallyPaid RentStatus = "Partially Paid"
	RentStatusPaid          RentStatus = "Paid"
	RentStatusOverdue       RentStatus = "Overdue"
)

// PaymentEntry is one append-only audit line in a rent's payment history.
type PaymentEntry struct {
	Amount    int64     `json:"amount"`
	Date      time.Time `json:"date"`
	Method    string    `json:"method,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// TenantSnapshot preserves occupant details after the tenant row is removed.
type TenantSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	JoiningDate *time.Time `json:"joining_date,omitempty"`
}

// RoomSnapshot preserves room details after the tenant row is removed.
type RoomSnapshot struct {
	ID          string `json:"id"`
	FloorNumber string `json:"floor_number,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
	RentAmount  int64  `json:"rent_amount"`
}

// Rent is one tenant's bill for a single (month, year) period.
// Amounts are integer minor units.
type Rent struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TenantID snowflake.ID `gorm:"not null;uniqueIndex:ux_rent_period,priority:1"`
	Month    int          `gorm:"not null;uniqueIndex:ux_rent_period,priority:2"`
	Year     int          `gorm:"not null;uniqueIndex:ux_rent_period,priority:3"`
	RoomID   snowflake.ID `gorm:"not null;index"`
	AdminID  snowflake.ID `gorm:"not null;index"`

	Amount     int64      `gorm:"not null"`
	AmountPaid int64      `gorm:"not null;default:0"`
	DueDate    time.Time  `gorm:"not null;index"`
	IsPaid     bool       `gorm:"not null;default:false"`
	Status     RentStatus `gorm:"type:text;not null"`

	PaymentMethod    string                            `gorm:"type:text"`
	PaymentReference string                            `gorm:"type:text"`
	PaymentDate      *time.Time                        `gorm:""`
	PaymentHistory   datatypes.JSONSlice[PaymentEntry] `gorm:""`

	TenantInfo    *TenantSnapshot `gorm:"serializer:json"`
	RoomInfo      *RoomSnapshot   `gorm:"serializer:json"`
	TenantDeleted bool            `gorm:"not null;default:false"`

	ReminderSent bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Rent) TableName() string { return "rents" }

// Outstanding returns the unpaid balance.
func (r *Rent) Outstanding() int64 {
	if r.AmountPaid >= r.Amount {
		return 0
	}
	return r.Amount - r.AmountPaid
}

// BillableTenant is the directory projection the engine bills against:
// an active tenant with an assigned room and a joining date.
type BillableTenant struct {
	ID          snowflake.ID
	AdminID     snowflake.ID
	RoomID      snowflake.ID
	Name        string
	Phone       string
	JoiningDate *time.Time
	RentAmount  int64
	FloorNumber string
	RoomNumber  string
}

// RentView is the scan DTO. Placeholder views have no backing record yet;
// callers must create the record before accepting payment against it.
type RentView struct {
	RentID      string     `json:"rent_id,omitempty"`
	TenantID    string     `json:"tenant_id"`
	TenantName  string     `json:"tenant_name"`
	RoomLabel   string     `json:"room_label,omitempty"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	Amount      int64      `json:"amount"`
	AmountPaid  int64      `json:"amount_paid"`
	DueDate     time.Time  `json:"due_date"`
	Status      RentStatus `json:"status"`
	IsPaid      bool       `json:"is_paid"`
	Placeholder bool       `json:"placeholder"`
	DaysPastDue int        `json:"days_past_due,omitempty"`
}
