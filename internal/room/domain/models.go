// Package domain contains persistence models for rooms.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Room is one rentable unit. RentAmount is integer minor units and is
// snapshotted onto rent records at creation time; changing it later does
// not touch existing records.
type Room struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	AdminID     snowflake.ID `gorm:"not null;uniqueIndex:ux_room_number,priority:1"`
	FloorNumber string       `gorm:"type:text;not null;uniqueIndex:ux_room_number,priority:2"`
	RoomNumber  string       `gorm:"type:text;not null;uniqueIndex:ux_room_number,priority:3"`
	Capacity    int          `gorm:"not null;default:1"`
	Occupied    int          `gorm:"not null;default:0"`
	RentAmount  int64        `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Room) TableName() string { return "rooms" }
