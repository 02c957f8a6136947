package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() roomdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, room *roomdomain.Room) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rooms (
			id, admin_id, floor_number, room_number, capacity, occupied,
			rent_amount, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.AdminID,
		room.FloorNumber,
		room.RoomNumber,
		room.Capacity,
		room.Occupied,
		room.RentAmount,
		room.CreatedAt,
		room.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, room *roomdomain.Room) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET floor_number = ?, room_number = ?, capacity = ?,
			rent_amount = ?, updated_at = ? WHERE id = ?`,
		room.FloorNumber,
		room.RoomNumber,
		room.Capacity,
		room.RentAmount,
		room.UpdatedAt,
		room.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM rooms WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*roomdomain.Room, error) {
	var room roomdomain.Room
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, adminID snowflake.ID) ([]roomdomain.Room, error) {
	var rooms []roomdomain.Room
	err := db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("floor_number, room_number").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// IncrementOccupancy adds one occupant; the capacity guard lives in the
// statement so concurrent assignments cannot overfill a room.
func (r *repo) IncrementOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE rooms SET occupied = occupied + 1 WHERE id = ? AND occupied < capacity`,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) DecrementOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET occupied = occupied - 1 WHERE id = ? AND occupied > 0`,
		id,
	).Error
}

func (r *repo) SetOccupancy(ctx context.Context, db *gorm.DB, id snowflake.ID, occupied int) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET occupied = ? WHERE id = ?`,
		occupied,
		id,
	).Error
}

func (r *repo) CountActiveTenants(ctx context.Context, db *gorm.DB, adminID snowflake.ID) (map[snowflake.ID]int, error) {
	var rows []struct {
		RoomID snowflake.ID
		Total  int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT room_id, COUNT(*) AS total FROM tenants
		WHERE admin_id = ? AND active = ? GROUP BY room_id`,
		adminID,
		true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[snowflake.ID]int, len(rows))
	for _, row := range rows {
		counts[row.RoomID] = row.Total
	}
	return counts, nil
}
