package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	adjustmentdomain "github.com/HollandRoad/mls/internal/adjustment/domain"
	auditservice "github.com/HollandRoad/mls/internal/audit/service"
	"github.com/HollandRoad/mls/internal/auditcontext"
	billingdomain "github.com/HollandRoad/mls/internal/billing/domain"
	communicationdomain "github.com/HollandRoad/mls/internal/communication/domain"
	"github.com/HollandRoad/mls/internal/config"
	expensedomain "github.com/HollandRoad/mls/internal/expense/domain"
	ledgerdomain "github.com/HollandRoad/mls/internal/ledger/domain"
	"github.com/HollandRoad/mls/internal/month"
	obscontext "github.com/HollandRoad/mls/internal/observability/context"
	obslogger "github.com/HollandRoad/mls/internal/observability/logger"
	"github.com/HollandRoad/mls/internal/observability/metrics"
	"github.com/HollandRoad/mls/internal/observability/tracing"
	overviewdomain "github.com/HollandRoad/mls/internal/overview/domain"
	tenancydomain "github.com/HollandRoad/mls/internal/tenancy/domain"
	tenantdomain "github.com/HollandRoad/mls/internal/tenant/domain"
	unitdomain "github.com/HollandRoad/mls/internal/unit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds the HTTP surface and the domain services it fronts.
type Server struct {
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	engine *gin.Engine

	limiter *rateLimiter

	unitSvc          unitdomain.Service
	tenantSvc        tenantdomain.Service
	tenancySvc       tenancydomain.Service
	billingSvc       billingdomain.Service
	adjustmentSvc    adjustmentdomain.Service
	ledgerSvc        ledgerdomain.Service
	communicationSvc communicationdomain.Service
	expenseSvc       expensedomain.Service
	overviewSvc      overviewdomain.Service
	auditSvc         *auditservice.Service
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Engine *gin.Engine

	UnitSvc          unitdomain.Service
	TenantSvc        tenantdomain.Service
	TenancySvc       tenancydomain.Service
	BillingSvc       billingdomain.Service
	AdjustmentSvc    adjustmentdomain.Service
	LedgerSvc        ledgerdomain.Service
	CommunicationSvc communicationdomain.Service
	ExpenseSvc       expensedomain.Service
	OverviewSvc      overviewdomain.Service
	AuditSvc         *auditservice.Service `optional:"true"`
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(func(c *gin.Context) {
		ctx := tracing.ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	engine.Use(tracing.GinMiddleware(cfg.Telemetry.ServiceName))
	engine.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:              p.Config,
		log:              p.Log.Named("server"),
		db:               p.DB,
		engine:           p.Engine,
		limiter:          newRateLimiter(300, time.Minute),
		unitSvc:          p.UnitSvc,
		tenantSvc:        p.TenantSvc,
		tenancySvc:       p.TenancySvc,
		billingSvc:       p.BillingSvc,
		adjustmentSvc:    p.AdjustmentSvc,
		ledgerSvc:        p.LedgerSvc,
		communicationSvc: p.CommunicationSvc,
		expenseSvc:       p.ExpenseSvc,
		overviewSvc:      p.OverviewSvc,
		auditSvc:         p.AuditSvc,
	}
}

// RegisterRoutes wires every HTTP route on the engine.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.Use(s.rateLimit())
	api.Use(s.auditContext())

	api.POST("/units", s.CreateUnit)
	api.GET("/units", s.ListUnits)
	api.GET("/units/:id", s.GetUnitByID)
	api.PATCH("/units/:id", s.UpdateUnit)
	api.GET("/units/:id/ledger", s.ListLedger)
	api.GET("/units/:id/ledger.csv", s.ExportLedgerCSV)
	api.GET("/units/:id/arrears", s.GetArrears)
	api.GET("/units/:id/summary", s.GetUnitSummary)
	api.GET("/units/:id/tenancies", s.ListUnitTenancies)

	api.POST("/landlords", s.CreateLandlord)
	api.GET("/landlords", s.ListLandlords)
	api.POST("/managers", s.CreateManager)
	api.GET("/managers", s.ListManagers)

	api.POST("/tenants", s.CreateTenant)
	api.GET("/tenants", s.ListTenants)
	api.GET("/tenants/:id", s.GetTenantByID)
	api.PATCH("/tenants/:id", s.UpdateTenant)
	api.GET("/tenants/:id/tenancies", s.ListTenantTenancies)

	api.POST("/tenancies", s.AssignTenancy)
	api.POST("/tenancies/end", s.EndTenancy)

	api.POST("/payments", s.RecordPayment)
	api.GET("/payments", s.ListPayments)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.PATCH("/payments/:id", s.UpdatePayment)
	api.DELETE("/payments/:id", s.DeletePayment)

	api.POST("/extra-charges", s.CreateExtraCharge)
	api.GET("/extra-charges", s.ListExtraCharges)
	api.DELETE("/extra-charges/:id", s.DeleteExtraCharge)

	api.POST("/adjustments", s.CreateAdjustment)
	api.GET("/adjustments", s.ListAdjustments)
	api.GET("/adjustments/:id", s.GetAdjustmentByID)
	api.PATCH("/adjustments/:id", s.UpdateAdjustment)
	api.POST("/adjustments/:id/bind", s.BindAdjustment)
	api.DELETE("/adjustments/:id", s.DeleteAdjustment)

	api.POST("/communications", s.RecordCommunication)
	api.GET("/communications", s.ListCommunications)

	api.POST("/expenses", s.CreateExpense)
	api.GET("/expenses", s.ListExpenses)
	api.GET("/expenses/report", s.ExpenseYearlyReport)
	api.DELETE("/expenses/:id", s.DeleteExpense)

	api.GET("/overview/unpaid", s.ListUnpaidTenants)
	api.GET("/overview/payment-status", s.ListPaymentStatus)
	api.GET("/overview/vacant", s.ListVacantUnits)

	api.GET("/audit-logs", s.ListAuditLogs)

	api.POST("/test/cleanup", s.TestCleanup)
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// auditContext copies request identity onto the context so audit writes can
// record who did what from where.
func (s *Server) auditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = auditcontext.WithRequestID(ctx, obscontext.RequestIDFromContext(ctx))
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())
		if actor := strings.TrimSpace(c.GetHeader("X-Actor")); actor != "" {
			ctx = auditcontext.WithActor(ctx, "user", actor)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func parseOptionalMonth(raw string) (month.Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return month.Month{}, nil
	}
	return month.Parse(raw)
}

// requireMonth reads a mandatory month query parameter and aborts with a
// field-level error when it is missing or malformed.
func requireMonth(c *gin.Context, field string) (month.Month, bool) {
	raw := strings.TrimSpace(c.Query(field))
	if raw == "" {
		AbortWithError(c, newValidationError(field, "required", field+" is required"))
		return month.Month{}, false
	}
	m, err := month.Parse(raw)
	if err != nil {
		AbortWithError(c, newValidationError(field, "invalid_month", field+" must be YYYY-MM"))
		return month.Month{}, false
	}
	return m, true
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, nil
}
