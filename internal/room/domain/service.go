package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRoomRequest struct {
	FloorNumber string `json:"floor_number"`
	RoomNumber  string `json:"room_number"`
	Capacity    int    `json:"capacity"`
	RentAmount  int64  `json:"rent_amount"`
}

type UpdateRoomRequest struct {
	FloorNumber *string `json:"floor_number,omitempty"`
	RoomNumber  *string `json:"room_number,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	RentAmount  *int64  `json:"rent_amount,omitempty"`
}

type ListRoomResponse struct {
	Rooms []Room `json:"rooms"`
}

type Service interface {
	Create(ctx context.Context, req CreateRoomRequest) (Room, error)
	GetByID(ctx context.Context, id string) (Room, error)
	List(ctx context.Context) (ListRoomResponse, error)
	Update(ctx context.Context, id string, req UpdateRoomRequest) (Room, error)
	Delete(ctx context.Context, id string) error

	// Occupancy hooks used by tenant assignment.
	Occupy(ctx context.Context, id snowflake.ID) error
	Vacate(ctx context.Context, id snowflake.ID) error

	// RepairOccupancy recounts active tenants per room and rewrites
	// counters that drifted. Returns the number of rooms corrected.
	RepairOccupancy(ctx context.Context) (int, error)
}

var (
	ErrInvalidAdmin  = errors.New("invalid_admin")
	ErrInvalidRoom   = errors.New("invalid_room")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrRoomNotFound  = errors.New("room_not_found")
	ErrDuplicateRoom = errors.New("duplicate_room_number")
	ErrRoomFull      = errors.New("room_full")
	ErrRoomOccupied  = errors.New("room_occupied")
	ErrForbidden     = errors.New("forbidden")
)
