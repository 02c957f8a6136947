package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, room *Room) error
	Update(ctx context.Context, db *gorm.DB, room *Room) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	List(ctx context.Context, db *gorm.DB, adminID snowflake.ID) ([]Room, error)
	IncrementOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	DecrementOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	SetOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID, occupied int) error
	CountActiveTenants(ctx context.Context, db *gorm.DB, adminID snowflake.ID) (map[snowflake.ID]int, error)
}
