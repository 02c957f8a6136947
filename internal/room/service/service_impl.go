package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	"github.com/lodgeops/lodgeops/internal/clock"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	"github.com/lodgeops/lodgeops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  roomdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  roomdomain.Repository
}

func NewService(p ServiceParam) roomdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("room.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req roomdomain.CreateRoomRequest) (roomdomain.Room, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return roomdomain.Room{}, roomdomain.ErrInvalidAdmin
	}

	floor := strings.TrimSpace(req.FloorNumber)
	number := strings.TrimSpace(req.RoomNumber)
	if number == "" {
		return roomdomain.Room{}, roomdomain.ErrInvalidRoom
	}
	if req.RentAmount <= 0 {
		return roomdomain.Room{}, roomdomain.ErrInvalidAmount
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	now := s.clock.Now()
	room := roomdomain.Room{
		ID:          s.genID.Generate(),
		AdminID:     adminID,
		FloorNumber: floor,
		RoomNumber:  number,
		Capacity:    capacity,
		RentAmount:  req.RentAmount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &room); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return roomdomain.Room{}, roomdomain.ErrDuplicateRoom
		}
		return roomdomain.Room{}, err
	}

	return room, nil
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (roomdomain.Room, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return roomdomain.Room{}, roomdomain.ErrInvalidAdmin
	}

	room, err := s.find(ctx, id, adminID)
	if err != nil {
		return roomdomain.Room{}, err
	}
	return *room, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context) (roomdomain.ListRoomResponse, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return roomdomain.ListRoomResponse{}, roomdomain.ErrInvalidAdmin
	}

	rooms, err := s.repo.List(ctx, s.db, adminID)
	if err != nil {
		return roomdomain.ListRoomResponse{}, err
	}

	return roomdomain.ListRoomResponse{Rooms: rooms}, nil
}

// Update implements domain.Service.
func (s *Service) Update(ctx context.Context, id string, req roomdomain.UpdateRoomRequest) (roomdomain.Room, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return roomdomain.Room{}, roomdomain.ErrInvalidAdmin
	}

	room, err := s.find(ctx, id, adminID)
	if err != nil {
		return roomdomain.Room{}, err
	}

	if req.FloorNumber != nil {
		room.FloorNumber = strings.TrimSpace(*req.FloorNumber)
	}
	if req.RoomNumber != nil {
		number := strings.TrimSpace(*req.RoomNumber)
		if number == "" {
			return roomdomain.Room{}, roomdomain.ErrInvalidRoom
		}
		room.RoomNumber = number
	}
	if req.Capacity != nil {
		if *req.Capacity < room.Occupied || *req.Capacity < 1 {
			return roomdomain.Room{}, roomdomain.ErrInvalidRoom
		}
		room.Capacity = *req.Capacity
	}
	if req.RentAmount != nil {
		if *req.RentAmount <= 0 {
			return roomdomain.Room{}, roomdomain.ErrInvalidAmount
		}
		room.RentAmount = *req.RentAmount
	}
	room.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, room); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return roomdomain.Room{}, roomdomain.ErrDuplicateRoom
		}
		return roomdomain.Room{}, err
	}

	return *room, nil
}

// Delete implements domain.Service. Occupied rooms cannot be removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return roomdomain.ErrInvalidAdmin
	}

	room, err := s.find(ctx, id, adminID)
	if err != nil {
		return err
	}
	if room.Occupied > 0 {
		return roomdomain.ErrRoomOccupied
	}

	return s.repo.Delete(ctx, s.db, room.ID)
}

// Occupy implements domain.Service.
func (s *Service) Occupy(ctx context.Context, id snowflake.ID) error {
	ok, err := s.repo.IncrementOccupancy(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return roomdomain.ErrRoomFull
	}
	return nil
}

// Vacate implements domain.Service.
func (s *Service) Vacate(ctx context.Context, id snowflake.ID) error {
	return s.repo.DecrementOccupancy(ctx, s.db, id)
}

// RepairOccupancy implements domain.Service.
func (s *Service) RepairOccupancy(ctx context.Context) (int, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return 0, roomdomain.ErrInvalidAdmin
	}

	rooms, err := s.repo.List(ctx, s.db, adminID)
	if err != nil {
		return 0, err
	}
	counts, err := s.repo.CountActiveTenants(ctx, s.db, adminID)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, room := range rooms {
		actual := counts[room.ID]
		if room.Occupied == actual {
			continue
		}
		if err := s.repo.SetOccupancy(ctx, s.db, room.ID, actual); err != nil {
			return fixed, err
		}
		s.log.Warn("occupancy counter repaired",
			zap.String("room_id", room.ID.String()),
			zap.Int("recorded", room.Occupied),
			zap.Int("actual", actual),
		)
		fixed++
	}

	return fixed, nil
}

func (s *Service) find(ctx context.Context, id string, adminID snowflake.ID) (*roomdomain.Room, error) {
	roomID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, roomdomain.ErrInvalidRoom
	}

	room, err := s.repo.FindByID(ctx, s.db, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, roomdomain.ErrRoomNotFound
	}
	if room.AdminID != adminID {
		return nil, roomdomain.ErrForbidden
	}

	return room, nil
}
