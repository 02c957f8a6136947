package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"github.com/lodgeops/lodgeops/pkg/db"
	"go.uber.org/zap"
)

// reconcileMaxPeriods bounds the gap-fill walk for a single tenant.
const reconcileMaxPeriods = 120

// ListDueRents implements domain.Service.
func (s *Service) ListDueRents(ctx context.Context) (rentdomain.DueRents, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return rentdomain.DueRents{}, rentdomain.ErrInvalidAdmin
	}

	now := s.clock.Now()
	today := rentdomain.Normalize(now)
	windowEnd := today.AddDate(0, 0, s.dueSoonWindowDays)

	tenants, err := s.repo.ListBillableTenants(ctx, s.db, adminID)
	if err != nil {
		return rentdomain.DueRents{}, err
	}
	tenantsByID := make(map[snowflake.ID]rentdomain.BillableTenant, len(tenants))
	for _, t := range tenants {
		tenantsByID[t.ID] = t
	}

	out := rentdomain.DueRents{
		Upcoming: []rentdomain.RentView{},
		Overdue:  []rentdomain.RentView{},
	}

	// Existing unpaid records that are already past due.
	overdueRents, err := s.repo.ListUnpaidBefore(ctx, s.db, adminID, today)
	if err != nil {
		return rentdomain.DueRents{}, err
	}
	seen := make(map[string]struct{}, len(overdueRents))
	for i := range overdueRents {
		rent := overdueRents[i]
		out.Overdue = append(out.Overdue, s.viewFromRent(rent, tenantsByID, today))
		seen[periodKey(rent.TenantID, rent.Month, rent.Year)] = struct{}{}
	}

	for _, tenant := range tenants {
		if tenant.JoiningDate == nil {
			continue
		}

		mostRecent, next, ok := rentdomain.DueSchedule(*tenant.JoiningDate, now)
		if !ok {
			continue
		}

		// Most recent due period: synthesize a placeholder when no
		// record backs it, or surface an existing record due today.
		month, year := int(mostRecent.Month()), mostRecent.Year()
		if _, handled := seen[periodKey(tenant.ID, month, year)]; !handled {
			record, err := s.repo.FindByPeriod(ctx, s.db, tenant.ID, month, year)
			if err != nil {
				return rentdomain.DueRents{}, err
			}
			switch {
			case record == nil:
				view := s.placeholderView(tenant, month, year, mostRecent, today)
				if mostRecent.Before(today) {
					out.Overdue = append(out.Overdue, view)
				} else {
					out.Upcoming = append(out.Upcoming, view)
				}
			case !record.IsPaid && !mostRecent.Before(today):
				out.Upcoming = append(out.Upcoming, s.viewFromRent(*record, tenantsByID, today))
			}
			seen[periodKey(tenant.ID, month, year)] = struct{}{}
		}

		// Next due period, when it falls inside the upcoming window.
		if next.After(windowEnd) {
			continue
		}
		month, year = int(next.Month()), next.Year()
		if _, handled := seen[periodKey(tenant.ID, month, year)]; handled {
			continue
		}
		record, err := s.repo.FindByPeriod(ctx, s.db, tenant.ID, month, year)
		if err != nil {
			return rentdomain.DueRents{}, err
		}
		switch {
		case record == nil:
			out.Upcoming = append(out.Upcoming, s.placeholderView(tenant, month, year, next, today))
		case !record.IsPaid:
			out.Upcoming = append(out.Upcoming, s.viewFromRent(*record, tenantsByID, today))
		}
		seen[periodKey(tenant.ID, month, year)] = struct{}{}
	}

	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return out.Upcoming[i].DueDate.Before(out.Upcoming[j].DueDate)
	})
	sort.SliceStable(out.Overdue, func(i, j int) bool {
		return out.Overdue[i].DaysPastDue > out.Overdue[j].DaysPastDue
	})

	return out, nil
}

// GenerateForPeriod implements domain.Service.
func (s *Service) GenerateForPeriod(ctx context.Context, req rentdomain.GenerateRequest) (rentdomain.GenerateResult, error) {
	if err := validatePeriod(req.Month, req.Year); err != nil {
		return rentdomain.GenerateResult{}, err
	}

	adminID := req.AdminID
	if adminID == 0 {
		if ctxAdmin, ok := admincontext.AdminIDFromContext(ctx); ok {
			adminID = ctxAdmin
		}
	}

	tenants, err := s.repo.ListBillableTenants(ctx, s.db, adminID)
	if err != nil {
		return rentdomain.GenerateResult{}, err
	}

	result := rentdomain.GenerateResult{
		Created: []rentdomain.Rent{},
		Skipped: []rentdomain.GenerateIssue{},
		Errors:  []rentdomain.GenerateIssue{},
	}

	now := s.clock.Now()
	for _, tenant := range tenants {
		if tenant.JoiningDate == nil {
			continue
		}

		dueDate := rentdomain.DateForPeriod(*tenant.JoiningDate, req.Month, req.Year)
		if dueDate.Before(rentdomain.Normalize(*tenant.JoiningDate)) {
			result.Skipped = append(result.Skipped, rentdomain.GenerateIssue{
				TenantID: formatID(tenant.ID),
				Reason:   "period precedes joining date",
			})
			continue
		}

		existing, err := s.repo.FindByPeriod(ctx, s.db, tenant.ID, req.Month, req.Year)
		if err != nil {
			result.Errors = append(result.Errors, rentdomain.GenerateIssue{
				TenantID: formatID(tenant.ID),
				Reason:   err.Error(),
			})
			continue
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, rentdomain.GenerateIssue{
				TenantID: formatID(tenant.ID),
				Reason:   "record already exists",
			})
			continue
		}

		if tenant.RentAmount <= 0 {
			result.Errors = append(result.Errors, rentdomain.GenerateIssue{
				TenantID: formatID(tenant.ID),
				Reason:   "room has no rent amount",
			})
			continue
		}

		rent := rentdomain.Rent{
			ID:        s.genID.Generate(),
			TenantID:  tenant.ID,
			RoomID:    tenant.RoomID,
			AdminID:   tenant.AdminID,
			Month:     req.Month,
			Year:      req.Year,
			Amount:    tenant.RentAmount,
			DueDate:   dueDate,
			Status:    rentdomain.RentStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, s.db, &rent); err != nil {
			if db.IsDuplicateKeyErr(err) {
				result.Skipped = append(result.Skipped, rentdomain.GenerateIssue{
					TenantID: formatID(tenant.ID),
					Reason:   "record already exists",
				})
				continue
			}
			result.Errors = append(result.Errors, rentdomain.GenerateIssue{
				TenantID: formatID(tenant.ID),
				Reason:   err.Error(),
			})
			continue
		}

		result.Created = append(result.Created, rent)
	}

	s.log.Info("rent generation",
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// ReconcileMissing implements domain.Service. It walks forward from each
// tenant's most recent paid period (or the joining period when nothing
// was ever paid) and fills the gaps up to the current due period.
func (s *Service) ReconcileMissing(ctx context.Context) (rentdomain.ReconcileResult, error) {
	var adminID snowflake.ID
	if ctxAdmin, ok := admincontext.AdminIDFromContext(ctx); ok {
		adminID = ctxAdmin
	}

	tenants, err := s.repo.ListBillableTenants(ctx, s.db, adminID)
	if err != nil {
		return rentdomain.ReconcileResult{}, err
	}

	now := s.clock.Now()
	today := rentdomain.Normalize(now)
	result := rentdomain.ReconcileResult{Created: []rentdomain.Rent{}}

	for _, tenant := range tenants {
		if tenant.JoiningDate == nil || tenant.RentAmount <= 0 {
			continue
		}

		mostRecent, _, ok := rentdomain.DueSchedule(*tenant.JoiningDate, now)
		if !ok {
			continue
		}

		lastPaid, err := s.repo.FindMostRecentPaid(ctx, s.db, tenant.ID)
		if err != nil {
			return result, err
		}

		startMonth, startYear := int(tenant.JoiningDate.Month()), tenant.JoiningDate.Year()
		if lastPaid != nil {
			startMonth, startYear = rentdomain.NextPeriod(lastPaid.Month, lastPaid.Year)
		}

		m, y := startMonth, startYear
		for i := 0; i < reconcileMaxPeriods; i++ {
			due := rentdomain.DateForPeriod(*tenant.JoiningDate, m, y)
			if due.After(mostRecent) {
				break
			}

			created, err := s.ensureRent(ctx, tenant, m, y, due, today)
			if err != nil {
				s.log.Warn("reconcile create failed",
					zap.String("tenant_id", formatID(tenant.ID)),
					zap.Int("month", m),
					zap.Int("year", y),
					zap.Error(err),
				)
			} else if created != nil {
				result.Created = append(result.Created, *created)
			}

			m, y = rentdomain.NextPeriod(m, y)
		}
	}

	if len(result.Created) > 0 {
		s.log.Info("reconciliation", zap.Int("created", len(result.Created)))
	}

	return result, nil
}

// ensureRent creates a rent record for the period unless one exists.
// Past-due records are created already Overdue.
func (s *Service) ensureRent(ctx context.Context, tenant rentdomain.BillableTenant, month, year int, due, today time.Time) (*rentdomain.Rent, error) {
	existing, err := s.repo.FindByPeriod(ctx, s.db, tenant.ID, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	status := rentdomain.RentStatusPending
	if due.Before(today) {
		status = rentdomain.RentStatusOverdue
	}

	now := s.clock.Now()
	rent := rentdomain.Rent{
		ID:        s.genID.Generate(),
		TenantID:  tenant.ID,
		RoomID:    tenant.RoomID,
		AdminID:   tenant.AdminID,
		Month:     month,
		Year:      year,
		Amount:    tenant.RentAmount,
		DueDate:   due,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &rent); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, nil
		}
		return nil, err
	}

	return &rent, nil
}

func (s *Service) viewFromRent(rent rentdomain.Rent, tenants map[snowflake.ID]rentdomain.BillableTenant, today time.Time) rentdomain.RentView {
	view := rentdomain.RentView{
		RentID:     rent.ID.String(),
		TenantID:   formatID(rent.TenantID),
		Month:      rent.Month,
		Year:       rent.Year,
		Amount:     rent.Amount,
		AmountPaid: rent.AmountPaid,
		DueDate:    rentdomain.Normalize(rent.DueDate),
		Status:     rent.Status,
		IsPaid:     rent.IsPaid,
	}
	if days := rentdomain.DaysPastDue(rent.DueDate, today); days > 0 && !rent.IsPaid {
		view.DaysPastDue = days
	}

	if tenant, ok := tenants[rent.TenantID]; ok {
		view.TenantName = tenant.Name
		view.RoomLabel = roomLabel(tenant.FloorNumber, tenant.RoomNumber)
		return view
	}
	if rent.TenantInfo != nil {
		view.TenantName = rent.TenantInfo.Name
	}
	if rent.RoomInfo != nil {
		view.RoomLabel = roomLabel(rent.RoomInfo.FloorNumber, rent.RoomInfo.RoomNumber)
	}
	return view
}

func (s *Service) placeholderView(tenant rentdomain.BillableTenant, month, year int, due, today time.Time) rentdomain.RentView {
	view := rentdomain.RentView{
		TenantID:    formatID(tenant.ID),
		TenantName:  tenant.Name,
		RoomLabel:   roomLabel(tenant.FloorNumber, tenant.RoomNumber),
		Month:       month,
		Year:        year,
		Amount:      tenant.RentAmount,
		DueDate:     due,
		Status:      rentdomain.RentStatusPending,
		Placeholder: true,
	}
	if days := rentdomain.DaysPastDue(due, today); days > 0 {
		view.DaysPastDue = days
		view.Status = rentdomain.RentStatusOverdue
	}
	return view
}

func roomLabel(floor, room string) string {
	if floor == "" {
		return room
	}
	return fmt.Sprintf("%s-%s", floor, room)
}

func periodKey(tenantID snowflake.ID, month, year int) string {
	return fmt.Sprintf("%d:%d:%d", tenantID, month, year)
}
