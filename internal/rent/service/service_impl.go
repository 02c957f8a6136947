package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	"github.com/lodgeops/lodgeops/internal/clock"
	"github.com/lodgeops/lodgeops/internal/config"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"github.com/lodgeops/lodgeops/pkg/db"
	"github.com/lodgeops/lodgeops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  rentdomain.Repository

	dueSoonWindowDays int
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  rentdomain.Repository
	Cfg   config.Config
}

func NewService(p ServiceParam) rentdomain.Service {
	window := p.Cfg.DueSoonWindowDays
	if window <= 0 {
		window = 30
	}

	return &Service{
		db:  p.DB,
		log: p.Log.Named("rent.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		dueSoonWindowDays: window,
	}
}

// Create implements domain.Service.
func (s *Service) Create(ctx context.Context, req rentdomain.CreateRentRequest) (rentdomain.Rent, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return rentdomain.Rent{}, rentdomain.ErrInvalidAdmin
	}

	if err := validatePeriod(req.Month, req.Year); err != nil {
		return rentdomain.Rent{}, err
	}

	tenantID, err := s.parseID(req.TenantID, rentdomain.ErrInvalidTenant)
	if err != nil {
		return rentdomain.Rent{}, err
	}

	tenant, err := s.repo.FindBillableTenant(ctx, s.db, tenantID)
	if err != nil {
		return rentdomain.Rent{}, err
	}
	if tenant == nil {
		return rentdomain.Rent{}, rentdomain.ErrTenantNotFound
	}
	if tenant.AdminID != adminID {
		return rentdomain.Rent{}, rentdomain.ErrForbidden
	}
	if tenant.JoiningDate == nil {
		return rentdomain.Rent{}, rentdomain.ErrTenantNotBilled
	}

	amount := req.Amount
	if amount == 0 {
		amount = tenant.RentAmount
	}
	if amount <= 0 {
		return rentdomain.Rent{}, rentdomain.ErrInvalidAmount
	}

	dueDate := rentdomain.DateForPeriod(*tenant.JoiningDate, req.Month, req.Year)
	if req.DueDate != nil {
		dueDate = rentdomain.Normalize(*req.DueDate)
	}

	existing, err := s.repo.FindByPeriod(ctx, s.db, tenantID, req.Month, req.Year)
	if err != nil {
		return rentdomain.Rent{}, err
	}
	if existing != nil {
		return rentdomain.Rent{}, rentdomain.ErrDuplicatePeriod
	}

	now := s.clock.Now()
	rent := rentdomain.Rent{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		RoomID:    tenant.RoomID,
		AdminID:   adminID,
		Month:     req.Month,
		Year:      req.Year,
		Amount:    amount,
		DueDate:   dueDate,
		Status:    rentdomain.RentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &rent); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return rentdomain.Rent{}, rentdomain.ErrDuplicatePeriod
		}
		return rentdomain.Rent{}, err
	}

	return rent, nil
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (rentdomain.Rent, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return rentdomain.Rent{}, rentdomain.ErrInvalidAdmin
	}

	rentID, err := s.parseID(id, rentdomain.ErrInvalidRent)
	if err != nil {
		return rentdomain.Rent{}, err
	}

	rent, err := s.repo.FindByID(ctx, s.db, rentID)
	if err != nil {
		return rentdomain.Rent{}, err
	}
	if rent == nil {
		return rentdomain.Rent{}, rentdomain.ErrRentNotFound
	}
	if rent.AdminID != adminID {
		return rentdomain.Rent{}, rentdomain.ErrForbidden
	}

	return *rent, nil
}

// List implements domain.Service.
func (s *Service) List(ctx context.Context, req rentdomain.ListRentRequest) (rentdomain.ListRentResponse, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return rentdomain.ListRentResponse{}, rentdomain.ErrInvalidAdmin
	}

	filter := rentdomain.ListFilter{
		Month:  req.Month,
		Year:   req.Year,
		Status: rentdomain.RentStatus(strings.TrimSpace(req.Status)),
		IsPaid: req.IsPaid,
	}

	if strings.TrimSpace(req.TenantID) != "" {
		tenantID, err := s.parseID(req.TenantID, rentdomain.ErrInvalidTenant)
		if err != nil {
			return rentdomain.ListRentResponse{}, err
		}
		filter.TenantID = tenantID
	}

	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 250 {
		pageSize = 250
	}
	filter.Limit = pageSize + 1

	if strings.TrimSpace(req.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return rentdomain.ListRentResponse{}, rentdomain.ErrInvalidRent
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return rentdomain.ListRentResponse{}, rentdomain.ErrInvalidRent
		}
		filter.AfterID = afterID
	}

	rents, err := s.repo.List(ctx, s.db, adminID, filter)
	if err != nil {
		return rentdomain.ListRentResponse{}, err
	}

	resp := rentdomain.ListRentResponse{}
	if len(rents) > pageSize {
		rents = rents[:pageSize]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: rents[len(rents)-1].ID.String(),
		})
		if err != nil {
			return rentdomain.ListRentResponse{}, err
		}
		resp.NextPageToken = token
	}
	resp.Rents = rents

	return resp, nil
}

// ApplyPayment implements domain.Service.
func (s *Service) ApplyPayment(ctx context.Context, rentID string, input rentdomain.PaymentInput) (rentdomain.PaymentResult, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return rentdomain.PaymentResult{}, rentdomain.ErrInvalidAdmin
	}

	id, err := s.parseID(rentID, rentdomain.ErrInvalidRent)
	if err != nil {
		return rentdomain.PaymentResult{}, err
	}

	rent, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return rentdomain.PaymentResult{}, err
	}
	if rent == nil {
		return rentdomain.PaymentResult{}, rentdomain.ErrRentNotFound
	}
	if rent.AdminID != adminID {
		return rentdomain.PaymentResult{}, rentdomain.ErrForbidden
	}
	if rent.IsPaid {
		return rentdomain.PaymentResult{}, rentdomain.ErrRentAlreadyPaid
	}

	amount := rent.Outstanding()
	if input.Amount != nil {
		amount = *input.Amount
	}
	if amount <= 0 {
		return rentdomain.PaymentResult{}, rentdomain.ErrInvalidAmount
	}

	newPaid := rent.AmountPaid + amount
	if newPaid > rent.Amount {
		newPaid = rent.Amount
	}
	applied := newPaid - rent.AmountPaid
	fullPayment := newPaid >= rent.Amount

	now := s.clock.Now()
	rent.AmountPaid = newPaid
	rent.IsPaid = fullPayment
	if fullPayment {
		rent.Status = rentdomain.RentStatusPaid
		rent.PaymentDate = &now
	} else {
		rent.Status = rentdomain.RentStatusPartiallyPaid
	}
	if method := strings.TrimSpace(input.Method); method != "" {
		rent.PaymentMethod = method
	}
	if reference := strings.TrimSpace(input.Reference); reference != "" {
		rent.PaymentReference = reference
	}
	rent.PaymentHistory = append(rent.PaymentHistory, rentdomain.PaymentEntry{
		Amount:    applied,
		Date:      now,
		Method:    strings.TrimSpace(input.Method),
		Reference: strings.TrimSpace(input.Reference),
		Notes:     strings.TrimSpace(input.Notes),
	})
	rent.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, rent); err != nil {
		return rentdomain.PaymentResult{}, err
	}

	result := rentdomain.PaymentResult{Rent: *rent}
	if fullPayment {
		next, err := s.chainNext(ctx, rent)
		if err != nil {
			// The payment itself succeeded; the next cycle will be
			// picked up by reconciliation.
			s.log.Warn("next cycle chaining failed",
				zap.String("rent_id", rent.ID.String()),
				zap.Error(err),
			)
		} else {
			result.NextRent = next
		}
	}

	return result, nil
}

// chainNext ensures a record exists for the period immediately after the
// fully paid one. A duplicate-key failure means a concurrent caller won
// the insert; the existing record is returned instead.
func (s *Service) chainNext(ctx context.Context, paid *rentdomain.Rent) (*rentdomain.Rent, error) {
	tenant, err := s.repo.FindBillableTenant(ctx, s.db, paid.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil || tenant.JoiningDate == nil {
		return nil, nil
	}

	nextMonth, nextYear := rentdomain.NextPeriod(paid.Month, paid.Year)
	existing, err := s.repo.FindByPeriod(ctx, s.db, paid.TenantID, nextMonth, nextYear)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	amount := tenant.RentAmount
	if amount <= 0 {
		amount = paid.Amount
	}

	now := s.clock.Now()
	next := rentdomain.Rent{
		ID:        s.genID.Generate(),
		TenantID:  paid.TenantID,
		RoomID:    tenant.RoomID,
		AdminID:   paid.AdminID,
		Month:     nextMonth,
		Year:      nextYear,
		Amount:    amount,
		DueDate:   rentdomain.DateForPeriod(*tenant.JoiningDate, nextMonth, nextYear),
		Status:    rentdomain.RentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &next); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByPeriod(ctx, s.db, paid.TenantID, nextMonth, nextYear)
		}
		return nil, err
	}

	return &next, nil
}

// SweepOverdue implements domain.Service.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	today := rentdomain.Normalize(s.clock.Now())

	updated, err := s.repo.SweepOverdue(ctx, s.db, today)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.log.Info("overdue sweep", zap.Int64("updated", updated))
	}

	return updated, nil
}

// StampTenantSnapshot implements domain.Service.
func (s *Service) StampTenantSnapshot(ctx context.Context, tenantID snowflake.ID, tenant rentdomain.TenantSnapshot, room rentdomain.RoomSnapshot) error {
	return s.repo.StampTenantSnapshot(ctx, s.db, tenantID, tenant, room)
}

func (s *Service) parseID(raw string, sentinel error) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, sentinel
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, sentinel
	}
	return id, nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return rentdomain.ErrInvalidPeriod
	}
	if year < 2000 || year > 2200 {
		return rentdomain.ErrInvalidPeriod
	}
	return nil
}

func formatID(id snowflake.ID) string {
	return strconv.FormatInt(int64(id), 10)
}
