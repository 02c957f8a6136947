package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	"github.com/lodgeops/lodgeops/internal/clock"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"github.com/lodgeops/lodgeops/internal/rent/repository"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) (*Service, *clock.FakeClock, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&roomdomain.Room{},
		&tenantdomain.Tenant{},
		&rentdomain.Rent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(now)
	svc := &Service{
		db:    conn,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: fake,
		repo:  repository.Provide(),

		dueSoonWindowDays: 30,
	}
	return svc, fake, conn
}

func seedRoom(t *testing.T, conn *gorm.DB, adminID snowflake.ID, rentAmount int64) roomdomain.Room {
	t.Helper()
	room := roomdomain.Room{
		ID:          snowflake.ID(time.Now().UnixNano()),
		AdminID:     adminID,
		FloorNumber: "1",
		RoomNumber:  fmt.Sprintf("R%d", time.Now().UnixNano()%100000),
		Capacity:    2,
		Occupied:    1,
		RentAmount:  rentAmount,
	}
	require.NoError(t, conn.Create(&room).Error)
	return room
}

func seedTenant(t *testing.T, conn *gorm.DB, adminID snowflake.ID, room roomdomain.Room, joining time.Time) tenantdomain.Tenant {
	t.Helper()
	tenant := tenantdomain.Tenant{
		ID:          snowflake.ID(time.Now().UnixNano() + 7),
		AdminID:     adminID,
		RoomID:      room.ID,
		Name:        "Asha Verma",
		Phone:       "9990001111",
		JoiningDate: &joining,
		Active:      true,
	}
	require.NoError(t, conn.Create(&tenant).Error)
	return tenant
}

func adminCtx(adminID snowflake.ID) context.Context {
	return admincontext.WithAdminID(context.Background(), adminID)
}

func TestCreateRent(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	rent, err := svc.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), rent.Amount)
	assert.Equal(t, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC), rent.DueDate)
	assert.Equal(t, rentdomain.RentStatusPending, rent.Status)
	assert.False(t, rent.IsPaid)

	t.Run("duplicate period", func(t *testing.T) {
		_, err := svc.Create(ctx, rentdomain.CreateRentRequest{
			TenantID: tenant.ID.String(),
			Month:    4,
			Year:     2024,
		})
		assert.ErrorIs(t, err, rentdomain.ErrDuplicatePeriod)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, rentdomain.CreateRentRequest{
			TenantID: "424242",
			Month:    5,
			Year:     2024,
		})
		assert.ErrorIs(t, err, rentdomain.ErrTenantNotFound)
	})

	t.Run("other admin", func(t *testing.T) {
		_, err := svc.Create(adminCtx(999), rentdomain.CreateRentRequest{
			TenantID: tenant.ID.String(),
			Month:    5,
			Year:     2024,
		})
		assert.ErrorIs(t, err, rentdomain.ErrForbidden)
	})

	t.Run("no admin in context", func(t *testing.T) {
		_, err := svc.Create(context.Background(), rentdomain.CreateRentRequest{
			TenantID: tenant.ID.String(),
			Month:    5,
			Year:     2024,
		})
		assert.ErrorIs(t, err, rentdomain.ErrInvalidAdmin)
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := svc.Create(ctx, rentdomain.CreateRentRequest{
			TenantID: tenant.ID.String(),
			Month:    13,
			Year:     2024,
		})
		assert.ErrorIs(t, err, rentdomain.ErrInvalidPeriod)
	})
}

func TestApplyPaymentPartialThenFull(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	rent, err := svc.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)

	partial := int64(2000)
	result, err := svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{Amount: &partial, Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.Rent.AmountPaid)
	assert.Equal(t, rentdomain.RentStatusPartiallyPaid, result.Rent.Status)
	assert.False(t, result.Rent.IsPaid)
	assert.Nil(t, result.Rent.PaymentDate)
	assert.Nil(t, result.NextRent)
	require.Len(t, result.Rent.PaymentHistory, 1)
	assert.Equal(t, int64(2000), result.Rent.PaymentHistory[0].Amount)

	rest := int64(3000)
	result, err = svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{Amount: &rest, Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Rent.AmountPaid)
	assert.Equal(t, rentdomain.RentStatusPaid, result.Rent.Status)
	assert.True(t, result.Rent.IsPaid)
	require.NotNil(t, result.Rent.PaymentDate)
	require.Len(t, result.Rent.PaymentHistory, 2)

	// Full payment chains the next billing cycle.
	require.NotNil(t, result.NextRent)
	assert.Equal(t, 5, result.NextRent.Month)
	assert.Equal(t, 2024, result.NextRent.Year)
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), result.NextRent.DueDate)
	assert.Equal(t, rentdomain.RentStatusPending, result.NextRent.Status)
	assert.Equal(t, int64(5000), result.NextRent.Amount)

	_, err = svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{Amount: &partial})
	assert.ErrorIs(t, err, rentdomain.ErrRentAlreadyPaid)
}

func TestApplyPaymentDefaultsToOutstanding(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	rent, err := svc.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)

	result, err := svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{})
	require.NoError(t, err)
	assert.True(t, result.Rent.IsPaid)
	assert.Equal(t, int64(5000), result.Rent.AmountPaid)
	assert.NotNil(t, result.NextRent)
}

func TestApplyPaymentClampsOverpayment(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	rent, err := svc.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)

	over := int64(6000)
	result, err := svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{Amount: &over})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Rent.AmountPaid)
	assert.True(t, result.Rent.IsPaid)

	// The history records the applied amount, not the requested one.
	require.Len(t, result.Rent.PaymentHistory, 1)
	assert.Equal(t, int64(5000), result.Rent.PaymentHistory[0].Amount)
}

func TestApplyPaymentValidation(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	rent, err := svc.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)

	negative := int64(-100)
	_, err = svc.ApplyPayment(ctx, rent.ID.String(), rentdomain.PaymentInput{Amount: &negative})
	assert.ErrorIs(t, err, rentdomain.ErrInvalidAmount)

	_, err = svc.ApplyPayment(ctx, "123456", rentdomain.PaymentInput{})
	assert.ErrorIs(t, err, rentdomain.ErrRentNotFound)

	_, err = svc.ApplyPayment(adminCtx(999), rent.ID.String(), rentdomain.PaymentInput{})
	assert.ErrorIs(t, err, rentdomain.ErrForbidden)
}

func TestListRentsPagination(t *testing.T) {
	now := time.Date(2024, time.June, 18, 10, 0, 0, 0, time.UTC)
	svc, _, conn := newTestService(t, now)

	adminID := snowflake.ID(100)
	room := seedRoom(t, conn, adminID, 5000)
	tenant := seedTenant(t, conn, adminID, room, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	ctx := adminCtx(adminID)

	for month := 1; month <= 3; month++ {
		_, err := svc.Create(ctx, rentdomain.CreateRentRequest{
			TenantID: tenant.ID.String(),
			Month:    month,
			Year:     2024,
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, rentdomain.ListRentRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Rents, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, rentdomain.ListRentRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Rents, 1)
	assert.False(t, second.HasMore)

	t.Run("scoped to admin", func(t *testing.T) {
		other, err := svc.List(adminCtx(999), rentdomain.ListRentRequest{})
		require.NoError(t, err)
		assert.Empty(t, other.Rents)
	})

	t.Run("period filter", func(t *testing.T) {
		resp, err := svc.List(ctx, rentdomain.ListRentRequest{Month: 2, Year: 2024})
		require.NoError(t, err)
		require.Len(t, resp.Rents, 1)
		assert.Equal(t, 2, resp.Rents[0].Month)
	})
}
