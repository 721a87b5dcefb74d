package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
	"github.com/viralzap/viralzap/internal/config"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
	exchangeratedomain "github.com/viralzap/viralzap/internal/exchangerate/domain"
	"github.com/viralzap/viralzap/internal/metrics"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
	providerdomain "github.com/viralzap/viralzap/internal/provider/domain"
	settingsdomain "github.com/viralzap/viralzap/internal/settings/domain"
	walletdomain "github.com/viralzap/viralzap/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, registry *prometheus.Registry, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

// RequestLoggingMiddleware emits one line per request. /health and /metrics
// are skipped to keep probe noise out of the logs.
func RequestLoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func registerGin(cfg config.Config, registry *prometheus.Registry, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, registry, log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
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

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	catalogSvc      catalogdomain.CatalogService
	orderSvc        orderdomain.OrderService
	credentialSvc   credentialdomain.Service
	exchangeRateSvc exchangeratedomain.Service
	settingsRepo    settingsdomain.Repository
	walletSvc       walletdomain.Service
	gateway         providerdomain.Gateway
	metrics         *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	CatalogSvc      catalogdomain.CatalogService
	OrderSvc        orderdomain.OrderService
	CredentialSvc   credentialdomain.Service
	ExchangeRateSvc exchangeratedomain.Service
	SettingsRepo    settingsdomain.Repository
	WalletSvc       walletdomain.Service
	Gateway         providerdomain.Gateway
	Metrics         *metrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		catalogSvc:      p.CatalogSvc,
		orderSvc:        p.OrderSvc,
		credentialSvc:   p.CredentialSvc,
		exchangeRateSvc: p.ExchangeRateSvc,
		settingsRepo:    p.SettingsRepo,
		walletSvc:       p.WalletSvc,
		gateway:         p.Gateway,
		metrics:         p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Storefront catalog --------
	api.GET("/services", s.ListStorefrontServices)
	api.GET("/services/:id", s.GetService)

	// -------- Orders --------
	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/status", s.SyncOrderStatus)
	api.POST("/orders/:id/refill", s.RefillOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)

	// -------- Wallet --------
	api.GET("/wallet/:userId", s.GetWalletBalance)
	api.POST("/wallet/:userId/deposit", s.DepositWallet)
	api.GET("/wallet/:userId/transactions", s.ListWalletTransactions)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	// -------- Provider credentials --------
	admin.GET("/credentials", s.ListCredentials)
	admin.POST("/credentials", s.SaveCredential)
	admin.POST("/credentials/:provider/toggle", s.ToggleCredential)
	admin.DELETE("/credentials/:provider", s.RemoveCredential)
	admin.POST("/credentials/test", s.TestConnections)
	admin.GET("/credentials/balances", s.ProviderBalances)

	// -------- Orders --------
	admin.POST("/orders/reconcile", s.ReconcileOrders)

	// -------- Catalog --------
	admin.POST("/catalog/sync", s.SyncCatalog)
	admin.GET("/catalog/services", s.ListServices)
	admin.GET("/catalog/services/:id", s.GetService)
	admin.PATCH("/catalog/services/:id", s.UpdateService)
	admin.POST("/catalog/markup", s.BulkMarkup)

	// -------- Settings --------
	admin.GET("/settings", s.ListSettings)
	admin.PUT("/settings/:key", s.PutSetting)
	admin.GET("/exchange-rate", s.GetExchangeRate)
	admin.PUT("/exchange-rate", s.OverrideExchangeRate)
}
