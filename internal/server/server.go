package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	admindomain "github.com/lodgeops/lodgeops/internal/admin/domain"
	"github.com/lodgeops/lodgeops/internal/config"
	"github.com/lodgeops/lodgeops/internal/observability"
	obslogger "github.com/lodgeops/lodgeops/internal/observability/logger"
	obsmetrics "github.com/lodgeops/lodgeops/internal/observability/metrics"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	roomdomain "github.com/lodgeops/lodgeops/internal/room/domain"
	tenantdomain "github.com/lodgeops/lodgeops/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", obsmetrics.Handler())

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	adminSvc  admindomain.Service
	roomSvc   roomdomain.Service
	tenantSvc tenantdomain.Service
	rentSvc   rentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	AdminSvc  admindomain.Service
	RoomSvc   roomdomain.Service
	TenantSvc tenantdomain.Service
	RentSvc   rentdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		genID:  p.GenID,

		adminSvc:  p.AdminSvc,
		roomSvc:   p.RoomSvc,
		tenantSvc: p.TenantSvc,
		rentSvc:   p.RentSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// RegisterAPIRoutes wires the /api/v1 surface.
func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/api/v1")

	admin := v1.Group("/admin")
	admin.POST("/register", s.Register)
	admin.POST("/login", s.Login)
	admin.GET("/me", s.AuthRequired(), s.GetProfile)
	admin.PUT("/me", s.AuthRequired(), s.UpdateProfile)
	admin.PUT("/password", s.AuthRequired(), s.UpdatePassword)

	rooms := v1.Group("/rooms", s.AuthRequired())
	rooms.GET("", s.ListRooms)
	rooms.POST("", s.CreateRoom)
	rooms.POST("/repair-occupancy", s.RepairRoomOccupancy)
	rooms.GET("/:id", s.GetRoom)
	rooms.PUT("/:id", s.UpdateRoom)
	rooms.DELETE("/:id", s.DeleteRoom)

	tenants := v1.Group("/tenants", s.AuthRequired())
	tenants.GET("", s.ListTenants)
	tenants.POST("", s.CreateTenant)
	tenants.GET("/:id", s.GetTenant)
	tenants.PUT("/:id", s.UpdateTenant)
	tenants.DELETE("/:id", s.DeleteTenant)

	rents := v1.Group("/rents", s.AuthRequired())
	rents.GET("", s.ListRents)
	rents.POST("", s.CreateRent)
	rents.GET("/due", s.ListDueRents)
	rents.GET("/:id", s.GetRent)
	rents.PUT("/:id/pay", s.PayRent)
	rents.POST("/generate", s.GenerateRents)

	v1.GET("/dashboard/stats", s.AuthRequired(), s.DashboardStats)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
