package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	"github.com/lodgeops/lodgeops/internal/clock"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  tenantdomain.Repository

	roomsvc roomdomain.Service
	rentsvc rentdomain.Service
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  tenantdomain.Repository

	Roomsvc roomdomain.Service
	Rentsvc rentdomain.Service
}

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("tenant.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		roomsvc: p.Roomsvc,
		rentsvc: p.Rentsvc,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req tenantdomain.CreateTenantRequest) (tenantdomain.Tenant, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidAdmin
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidTenant
	}

	room, err := s.roomsvc.GetByID(ctx, req.RoomID)
	if err != nil {
		return tenantdomain.Tenant{}, mapRoomErr(err)
	}

	if err := s.roomsvc.Occupy(ctx, room.ID); err != nil {
		return tenantdomain.Tenant{}, err
	}

	var joining *time.Time
	if req.JoiningDate != nil {
		normalized := rentdomain.Normalize(*req.JoiningDate)
		joining = &normalized
	}

	now := s.clock.Now()
	tenant := tenantdomain.Tenant{
		ID:          s.genID.Generate(),
		AdminID:     adminID,
		RoomID:      room.ID,
		Name:        name,
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		JoiningDate: joining,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &tenant); err != nil {
		if vacateErr := s.roomsvc.Vacate(ctx, room.ID); vacateErr != nil {
			s.log.Warn("occupancy rollback failed",
				zap.String("room_id", room.ID.String()),
				zap.Error(vacateErr),
			)
		}
		return tenantdomain.Tenant{}, err
	}

	return tenant, nil
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (tenantdomain.Tenant, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidAdmin
	}

	tenant, err := s.find(ctx, id, adminID)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}
	return *tenant, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context, req tenantdomain.ListTenantRequest) (tenantdomain.ListTenantResponse, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return tenantdomain.ListTenantResponse{}, tenantdomain.ErrInvalidAdmin
	}

	tenants, err := s.repo.List(ctx, s.db, adminID, req.ActiveOnly)
	if err != nil {
		return tenantdomain.ListTenantResponse{}, err
	}

	return tenantdomain.ListTenantResponse{Tenants: tenants}, nil
}

// Update implements domain.Service. The joining date is immutable; room
// moves and active toggles adjust occupancy counters.
func (s *Service) Update(ctx context.Context, id string, req tenantdomain.UpdateTenantRequest) (tenantdomain.Tenant, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidAdmin
	}

	tenant, err := s.find(ctx, id, adminID)
	if err != nil {
		return tenantdomain.Tenant{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return tenantdomain.Tenant{}, tenantdomain.ErrInvalidTenant
		}
		tenant.Name = name
	}
	if req.Phone != nil {
		tenant.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		tenant.Email = strings.TrimSpace(*req.Email)
	}

	if req.RoomID != nil {
		room, err := s.roomsvc.GetByID(ctx, *req.RoomID)
		if err != nil {
			return tenantdomain.Tenant{}, mapRoomErr(err)
		}
		if room.ID != tenant.RoomID {
			if tenant.Active {
				if err := s.roomsvc.Occupy(ctx, room.ID); err != nil {
					return tenantdomain.Tenant{}, err
				}
				if err := s.roomsvc.Vacate(ctx, tenant.RoomID); err != nil {
					s.log.Warn("vacate previous room failed",
						zap.String("room_id", tenant.RoomID.String()),
						zap.Error(err),
					)
				}
			}
			tenant.RoomID = room.ID
		}
	}

	if req.Active != nil && *req.Active != tenant.Active {
		if *req.Active {
			if err := s.roomsvc.Occupy(ctx, tenant.RoomID); err != nil {
				return tenantdomain.Tenant{}, err
			}
		} else {
			if err := s.roomsvc.Vacate(ctx, tenant.RoomID); err != nil {
				return tenantdomain.Tenant{}, err
			}
		}
		tenant.Active = *req.Active
	}

	tenant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return tenantdomain.Tenant{}, err
	}

	return *tenant, nil
}

// Delete implements domain.Service. Billing history survives removal:
// tenant and room snapshots are stamped onto the rent records first.
func (s *Service) Delete(ctx context.Context, id string) error {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return tenantdomain.ErrInvalidAdmin
	}

	tenant, err := s.find(ctx, id, adminID)
	if err != nil {
		return err
	}

	tenantSnap := rentdomain.TenantSnapshot{
		ID:          tenant.ID.String(),
		Name:        tenant.Name,
		Phone:       tenant.Phone,
		Email:       tenant.Email,
		JoiningDate: tenant.JoiningDate,
	}
	roomSnap := rentdomain.RoomSnapshot{ID: tenant.RoomID.String()}
	if room, err := s.roomsvc.GetByID(ctx, tenant.RoomID.String()); err == nil {
		roomSnap.FloorNumber = room.FloorNumber
		roomSnap.RoomNumber = room.RoomNumber
		roomSnap.RentAmount = room.RentAmount
	}

	if err := s.rentsvc.StampTenantSnapshot(ctx, tenant.ID, tenantSnap, roomSnap); err != nil {
		return err
	}

	if tenant.Active {
		if err := s.roomsvc.Vacate(ctx, tenant.RoomID); err != nil {
			s.log.Warn("vacate on delete failed",
				zap.String("room_id", tenant.RoomID.String()),
				zap.Error(err),
			)
		}
	}

	return s.repo.Delete(ctx, s.db, tenant.ID)
}

func (s *Service) find(ctx context.Context, id string, adminID snowflake.ID) (*tenantdomain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, tenantdomain.ErrInvalidTenant
	}

	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}
	if tenant.AdminID != adminID {
		return nil, tenantdomain.ErrForbidden
	}

	return tenant, nil
}

func mapRoomErr(err error) error {
	switch {
	case errors.Is(err, roomdomain.ErrRoomNotFound), errors.Is(err, roomdomain.ErrInvalidRoom):
		return tenantdomain.ErrRoomNotFound
	case errors.Is(err, roomdomain.ErrForbidden):
		return tenantdomain.ErrForbidden
	default:
		return err
	}
}
