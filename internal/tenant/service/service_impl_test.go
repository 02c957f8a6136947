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
	"github.com/lodgeops/lodgeops/internal/config"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	rentrepository "github.com/lodgeops/lodgeops/internal/rent/repository"
	rentservice "github.com/lodgeops/lodgeops/internal/rent/service"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	roomrepository "github.com/lodgeops/lodgeops/internal/room/repository"
	roomservice "github.com/lodgeops/lodgeops/internal/room/service"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"github.com/lodgeops/lodgeops/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	tenants tenantdomain.Service
	rooms   roomdomain.Service
	rents   rentdomain.Service
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
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

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(now)

	rooms := roomservice.NewService(roomservice.ServiceParam{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  roomrepository.Provide(),
	})
	rents := rentservice.NewService(rentservice.ServiceParam{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  rentrepository.Provide(),
		Cfg:   config.Config{DueSoonWindowDays: 30},
	})
	tenants := NewService(ServiceParam{
		DB:      conn,
		Log:     log,
		GenID:   node,
		Clock:   fake,
		Repo:    repository.Provide(),
		Roomsvc: rooms,
		Rentsvc: rents,
	})

	return &testEnv{db: conn, tenants: tenants, rooms: rooms, rents: rents}
}

func adminCtx(adminID snowflake.ID) context.Context {
	return admincontext.WithAdminID(context.Background(), adminID)
}

func TestCreateTenantOccupiesRoom(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	room, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "2",
		RoomNumber:  "201",
		Capacity:    1,
		RentAmount:  7500,
	})
	require.NoError(t, err)

	joining := time.Date(2024, time.January, 15, 18, 30, 0, 0, time.UTC)
	tenant, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:        "Ravi Kumar",
		Phone:       "8880001111",
		RoomID:      room.ID.String(),
		JoiningDate: &joining,
	})
	require.NoError(t, err)
	assert.True(t, tenant.Active)
	// Joining dates are stored at midnight UTC.
	require.NotNil(t, tenant.JoiningDate)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), *tenant.JoiningDate)

	got, err := env.rooms.GetByID(ctx, room.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Occupied)

	t.Run("room at capacity", func(t *testing.T) {
		_, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
			Name:   "Second Tenant",
			RoomID: room.ID.String(),
		})
		assert.ErrorIs(t, err, roomdomain.ErrRoomFull)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
			Name:   "Nobody",
			RoomID: "424242",
		})
		assert.ErrorIs(t, err, tenantdomain.ErrRoomNotFound)
	})
}

func TestDeleteTenantStampsSnapshots(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	room, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "101",
		Capacity:    2,
		RentAmount:  5000,
	})
	require.NoError(t, err)

	joining := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	tenant, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:        "Asha Verma",
		Phone:       "9990001111",
		RoomID:      room.ID.String(),
		JoiningDate: &joining,
	})
	require.NoError(t, err)

	rent, err := env.rents.Create(ctx, rentdomain.CreateRentRequest{
		TenantID: tenant.ID.String(),
		Month:    4,
		Year:     2024,
	})
	require.NoError(t, err)

	require.NoError(t, env.tenants.Delete(ctx, tenant.ID.String()))

	_, err = env.tenants.GetByID(ctx, tenant.ID.String())
	assert.ErrorIs(t, err, tenantdomain.ErrTenantNotFound)

	// Billing history survives with the occupant details frozen in.
	var stamped rentdomain.Rent
	require.NoError(t, env.db.First(&stamped, "id = ?", rent.ID).Error)
	assert.True(t, stamped.TenantDeleted)
	require.NotNil(t, stamped.TenantInfo)
	assert.Equal(t, "Asha Verma", stamped.TenantInfo.Name)
	assert.Equal(t, tenant.ID.String(), stamped.TenantInfo.ID)
	require.NotNil(t, stamped.RoomInfo)
	assert.Equal(t, "101", stamped.RoomInfo.RoomNumber)
	assert.Equal(t, int64(5000), stamped.RoomInfo.RentAmount)

	got, err := env.rooms.GetByID(ctx, room.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Occupied)
}

func TestUpdateTenantMovesRoom(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	first, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "101",
		RentAmount:  5000,
	})
	require.NoError(t, err)
	second, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "102",
		RentAmount:  6000,
	})
	require.NoError(t, err)

	tenant, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:   "Ravi Kumar",
		RoomID: first.ID.String(),
	})
	require.NoError(t, err)

	target := second.ID.String()
	updated, err := env.tenants.Update(ctx, tenant.ID.String(), tenantdomain.UpdateTenantRequest{
		RoomID: &target,
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.RoomID)

	oldRoom, err := env.rooms.GetByID(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, oldRoom.Occupied)

	newRoom, err := env.rooms.GetByID(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, newRoom.Occupied)
}

func TestUpdateTenantDeactivateFreesBed(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	room, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "101",
		RentAmount:  5000,
	})
	require.NoError(t, err)

	tenant, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:   "Ravi Kumar",
		RoomID: room.ID.String(),
	})
	require.NoError(t, err)

	inactive := false
	updated, err := env.tenants.Update(ctx, tenant.ID.String(), tenantdomain.UpdateTenantRequest{
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	got, err := env.rooms.GetByID(ctx, room.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Occupied)
}

func TestRepairOccupancyRecounts(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	room, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "101",
		Capacity:    3,
		RentAmount:  5000,
	})
	require.NoError(t, err)

	_, err = env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:   "Ravi Kumar",
		RoomID: room.ID.String(),
	})
	require.NoError(t, err)
	second, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:   "Asha Verma",
		RoomID: room.ID.String(),
	})
	require.NoError(t, err)

	// Counters match the tenant rows: nothing to repair.
	fixed, err := env.rooms.RepairOccupancy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)

	// Simulate counter drift left behind by a partial failure.
	require.NoError(t, env.db.Exec(
		`UPDATE rooms SET occupied = 0 WHERE id = ?`, room.ID,
	).Error)

	fixed, err = env.rooms.RepairOccupancy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	got, err := env.rooms.GetByID(ctx, room.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Occupied)

	t.Run("deactivated tenants do not count", func(t *testing.T) {
		inactive := false
		_, err := env.tenants.Update(ctx, second.ID.String(), tenantdomain.UpdateTenantRequest{
			Active: &inactive,
		})
		require.NoError(t, err)

		require.NoError(t, env.db.Exec(
			`UPDATE rooms SET occupied = 3 WHERE id = ?`, room.ID,
		).Error)

		fixed, err := env.rooms.RepairOccupancy(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, fixed)

		got, err := env.rooms.GetByID(ctx, room.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 1, got.Occupied)
	})
}

func TestTenantScopedToAdmin(t *testing.T) {
	now := time.Date(2024, time.April, 18, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(t, now)
	ctx := adminCtx(100)

	room, err := env.rooms.Create(ctx, roomdomain.CreateRoomRequest{
		FloorNumber: "1",
		RoomNumber:  "101",
		RentAmount:  5000,
	})
	require.NoError(t, err)

	tenant, err := env.tenants.Create(ctx, tenantdomain.CreateTenantRequest{
		Name:   "Ravi Kumar",
		RoomID: room.ID.String(),
	})
	require.NoError(t, err)

	_, err = env.tenants.GetByID(adminCtx(999), tenant.ID.String())
	assert.ErrorIs(t, err, tenantdomain.ErrForbidden)

	err = env.tenants.Delete(adminCtx(999), tenant.ID.String())
	assert.ErrorIs(t, err, tenantdomain.ErrForbidden)
}
