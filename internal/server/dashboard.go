package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
)

type dashboardStats struct {
	Rooms         int64               `json:"rooms"`
	Tenants       int64               `json:"tenants"`
	ActiveTenants int64               `json:"active_tenants"`
	PendingRents  int                 `json:"pending_rents"`
	DueRents      rentdomain.DueRents `json:"due_rents"`
}

func (s *Server) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	dueRents, err := s.rentSvc.ListDueRents(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats := dashboardStats{
		DueRents:     dueRents,
		PendingRents: len(dueRents.Upcoming) + len(dueRents.Overdue),
	}

	if err := s.db.WithContext(ctx).
		Model(&roomdomain.Room{}).
		Where("admin_id = ?", adminID).
		Count(&stats.Rooms).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.db.WithContext(ctx).
		Model(&tenantdomain.Tenant{}).
		Where("admin_id = ?", adminID).
		Count(&stats.Tenants).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.db.WithContext(ctx).
		Model(&tenantdomain.Tenant{}).
		Where("admin_id = ? AND active = ?", adminID, true).
		Count(&stats.ActiveTenants).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
