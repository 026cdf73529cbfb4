package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rentbook/internal/authorization"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	"github.com/smallbiznis/rentbook/internal/config"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	financedomain "github.com/smallbiznis/rentbook/internal/finance/domain"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	"github.com/smallbiznis/rentbook/internal/observability"
	obsmiddleware "github.com/smallbiznis/rentbook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentbook/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rentbook/internal/observability/tracing"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	log           *zap.Logger
	authzSvc      authorization.Service
	propertySvc   propertydomain.Service
	leaseSvc      leasedomain.Service
	meterSvc      meterdomain.Service
	invoiceSvc    invoicedomain.Service
	expenseSvc    expensedomain.Service
	categorySvc   categorydomain.Service
	financeSvc    financedomain.Service
	tenantLimiter *ratelimit.TenantLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Log           *zap.Logger
	AuthzSvc      authorization.Service
	PropertySvc   propertydomain.Service
	LeaseSvc      leasedomain.Service
	MeterSvc      meterdomain.Service
	InvoiceSvc    invoicedomain.Service
	ExpenseSvc    expensedomain.Service
	CategorySvc   categorydomain.Service
	FinanceSvc    financedomain.Service
	TenantLimiter *ratelimit.TenantLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		log:           p.Log.Named("http.server"),
		authzSvc:      p.AuthzSvc,
		propertySvc:   p.PropertySvc,
		leaseSvc:      p.LeaseSvc,
		meterSvc:      p.MeterSvc,
		invoiceSvc:    p.InvoiceSvc,
		expenseSvc:    p.ExpenseSvc,
		categorySvc:   p.CategorySvc,
		financeSvc:    p.FinanceSvc,
		tenantLimiter: p.TenantLimiter,
	}

	svc.registerAdminRoutes()
	svc.registerTenantRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	api := s.engine.Group("/api/v1", s.ActorRequired())

	api.GET("/buildings", s.authorize(authorization.ObjectBuilding, authorization.ActionView), s.ListBuildings)
	api.POST("/buildings", s.authorize(authorization.ObjectBuilding, authorization.ActionCreate), s.CreateBuilding)
	api.GET("/buildings/:buildingId", s.authorize(authorization.ObjectBuilding, authorization.ActionView), s.GetBuilding)
	api.PATCH("/buildings/:buildingId", s.authorize(authorization.ObjectBuilding, authorization.ActionUpdate), s.UpdateBuilding)
	api.GET("/buildings/:buildingId/summary", s.authorize(authorization.ObjectSummary, authorization.ActionView), s.GetBuildingSummary)
	api.GET("/summaries", s.authorize(authorization.ObjectSummary, authorization.ActionView), s.GetPortfolioSummary)

	api.GET("/rooms", s.authorize(authorization.ObjectRoom, authorization.ActionView), s.ListRooms)
	api.POST("/rooms", s.authorize(authorization.ObjectRoom, authorization.ActionCreate), s.CreateRoom)
	api.GET("/rooms/:id", s.authorize(authorization.ObjectRoom, authorization.ActionView), s.GetRoom)
	api.PATCH("/rooms/:id", s.authorize(authorization.ObjectRoom, authorization.ActionUpdate), s.UpdateRoom)
	api.GET("/rooms/:id/consumption", s.authorize(authorization.ObjectMeterReading, authorization.ActionView), s.GetConsumption)

	api.GET("/contracts", s.authorize(authorization.ObjectContract, authorization.ActionView), s.ListContracts)
	api.POST("/contracts", s.authorize(authorization.ObjectContract, authorization.ActionCreate), s.CreateContract)
	api.GET("/contracts/:id", s.authorize(authorization.ObjectContract, authorization.ActionView), s.GetContract)
	api.PATCH("/contracts/:id", s.authorize(authorization.ObjectContract, authorization.ActionUpdate), s.UpdateContract)
	api.GET("/contracts/:id/utility-amounts", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetUtilityAmounts)
	api.GET("/contracts/:id/tenant", s.authorize(authorization.ObjectTenant, authorization.ActionView), s.GetTenant)
	api.PATCH("/contracts/:id/tenant", s.authorize(authorization.ObjectTenant, authorization.ActionUpdate), s.UpdateTenant)
	api.PUT("/contracts/:id/tenant/lock", s.authorize(authorization.ObjectTenant, authorization.ActionTenantLock), s.SetTenantLock)

	api.GET("/tenants", s.authorize(authorization.ObjectTenant, authorization.ActionView), s.ListTenants)
	api.POST("/tenants", s.authorize(authorization.ObjectTenant, authorization.ActionCreate), s.CreateTenant)

	api.GET("/meter-readings", s.authorize(authorization.ObjectMeterReading, authorization.ActionView), s.ListMeterReadings)
	api.POST("/meter-readings", s.authorize(authorization.ObjectMeterReading, authorization.ActionCreate), s.RecordMeterReading)
	api.DELETE("/meter-readings/:id", s.authorize(authorization.ObjectMeterReading, authorization.ActionDelete), s.DeleteMeterReading)

	api.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	api.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionCreate), s.CreateInvoice)
	api.POST("/invoices/generate", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceGenerate), s.GenerateInvoice)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoice)
	api.PATCH("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionUpdate), s.UpdateInvoice)
	api.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceRender), s.RenderInvoicePDF)

	api.GET("/opex", s.authorize(authorization.ObjectOpex, authorization.ActionView), s.ListOpex)
	api.POST("/opex", s.authorize(authorization.ObjectOpex, authorization.ActionCreate), s.CreateOpex)
	api.PATCH("/opex/:id", s.authorize(authorization.ObjectOpex, authorization.ActionUpdate), s.UpdateOpex)
	api.DELETE("/opex/:id", s.authorize(authorization.ObjectOpex, authorization.ActionDelete), s.DeleteOpex)

	api.GET("/setup-costs", s.authorize(authorization.ObjectSetupCost, authorization.ActionView), s.ListSetupCosts)
	api.POST("/setup-costs", s.authorize(authorization.ObjectSetupCost, authorization.ActionCreate), s.CreateSetupCost)
	api.PATCH("/setup-costs/:id", s.authorize(authorization.ObjectSetupCost, authorization.ActionUpdate), s.UpdateSetupCost)
	api.DELETE("/setup-costs/:id", s.authorize(authorization.ObjectSetupCost, authorization.ActionDelete), s.DeleteSetupCost)

	api.GET("/assets", s.authorize(authorization.ObjectAsset, authorization.ActionView), s.ListAssets)
	api.POST("/assets", s.authorize(authorization.ObjectAsset, authorization.ActionCreate), s.CreateAsset)
	api.PATCH("/assets/:id", s.authorize(authorization.ObjectAsset, authorization.ActionUpdate), s.UpdateAsset)
	api.DELETE("/assets/:id", s.authorize(authorization.ObjectAsset, authorization.ActionDelete), s.DeleteAsset)

	api.GET("/categories", s.authorize(authorization.ObjectCategory, authorization.ActionView), s.ListCategories)
	api.POST("/categories", s.authorize(authorization.ObjectCategory, authorization.ActionCreate), s.CreateCategory)
	api.PATCH("/categories/:id", s.authorize(authorization.ObjectCategory, authorization.ActionUpdate), s.UpdateCategory)
	api.DELETE("/categories/:id", s.authorize(authorization.ObjectCategory, authorization.ActionDelete), s.DeleteCategory)
}

func (s *Server) registerTenantRoutes() {
	me := s.engine.Group("/api/v1/me", s.ActorRequired(), s.TenantRequired(), s.TenantRateLimit())

	me.GET("/profile", s.authorize(authorization.ObjectProfile, authorization.ActionView), s.GetOwnProfile)
	me.PATCH("/profile", s.authorize(authorization.ObjectProfile, authorization.ActionUpdate), s.UpdateOwnProfile)
	me.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListOwnInvoices)
	me.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetOwnInvoice)
	me.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceRender), s.RenderOwnInvoicePDF)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
