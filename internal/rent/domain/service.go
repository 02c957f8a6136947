package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/pkg/db/pagination"
)

type CreateRentRequest struct {
	TenantID string     `json:"tenant_id"`
	Month    int        `json:"month"`
	Year     int        `json:"year"`
	Amount   int64      `json:"amount,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

type ListRentRequest struct {
	TenantID  string `form:"tenant_id"`
	Month     int    `form:"month"`
	Year      int    `form:"year"`
	Status    string `form:"status"`
	IsPaid    *bool  `form:"is_paid"`
	PageToken string `form:"page_token"`
	PageSize  int32  `form:"page_size,default=25"`
}

type ListRentResponse struct {
	pagination.PageInfo
	Rents []Rent `json:"rents"`
}

// PaymentInput describes one payment against a rent record. A nil Amount
// means "pay the full outstanding balance".
type PaymentInput struct {
	Amount    *int64 `json:"amount,omitempty"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// PaymentResult carries the updated record plus the chained next-period
// record when the payment completed the current one.
type PaymentResult struct {
	Rent     Rent  `json:"rent"`
	NextRent *Rent `json:"next_rent,omitempty"`
}

type DueRents struct {
	Upcoming []RentView `json:"upcoming"`
	Overdue  []RentView `json:"overdue"`
}

// GenerateRequest targets one billing period. AdminID zero means every
// admin (the scheduler variant).
type GenerateRequest struct {
	AdminID snowflake.ID
	Month   int
	Year    int
}

type GenerateIssue struct {
	TenantID string `json:"tenant_id"`
	Reason   string `json:"reason"`
}

type GenerateResult struct {
	Created []Rent          `json:"created"`
	Skipped []GenerateIssue `json:"skipped"`
	Errors  []GenerateIssue `json:"errors"`
}

type ReconcileResult struct {
	Created []Rent `json:"created"`
}

type Service interface {
	Create(ctx context.Context, req CreateRentRequest) (Rent, error)
	GetByID(ctx context.Context, id string) (Rent, error)
	List(ctx context.Context, req ListRentRequest) (ListRentResponse, error)
	ApplyPayment(ctx context.Context, rentID string, input PaymentInput) (PaymentResult, error)
	ListDueRents(ctx context.Context) (DueRents, error)
	GenerateForPeriod(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	ReconcileMissing(ctx context.Context) (ReconcileResult, error)
	SweepOverdue(ctx context.Context) (int64, error)
	StampTenantSnapshot(ctx context.Context, tenantID snowflake.ID, tenant TenantSnapshot, room RoomSnapshot) error
}

var (
	ErrInvalidAdmin    = errors.New("invalid_admin")
	ErrInvalidRent     = errors.New("invalid_rent")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrRentNotFound    = errors.New("rent_not_found")
	ErrTenantNotFound  = errors.New("tenant_not_found")
	ErrForbidden       = errors.New("forbidden")
	ErrDuplicatePeriod = errors.New("duplicate_rent_period")
	ErrRentAlreadyPaid = errors.New("rent_already_paid")
	ErrTenantNotBilled = errors.New("tenant_not_billable")
)
