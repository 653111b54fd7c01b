package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arraiapos/pos/app/api"
	"github.com/arraiapos/pos/app/catalog"
	"github.com/arraiapos/pos/app/categories"
	"github.com/arraiapos/pos/app/dashboard"
	"github.com/arraiapos/pos/app/landing"
	"github.com/arraiapos/pos/app/menu"
	"github.com/arraiapos/pos/app/pos"
	"github.com/arraiapos/pos/app/products"
	"github.com/arraiapos/pos/app/sales"
	"github.com/arraiapos/pos/app/siteconfig"
	"github.com/arraiapos/pos/cache"
	"github.com/arraiapos/pos/config"
	"github.com/arraiapos/pos/events"
	"github.com/arraiapos/pos/logging"
	"github.com/arraiapos/pos/metrics"
	"github.com/arraiapos/pos/models"
	"github.com/arraiapos/pos/pos/checkout"
	"github.com/arraiapos/pos/pos/session"
	"github.com/arraiapos/pos/storage"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

type observer interface {
	api.HTTPObserver
	checkout.Observer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := models.Open(cfg.PostgresDSN, gormlogger.Default.LogMode(gormlogger.Warn))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := models.Migrate(db); err != nil {
		return err
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	salesRepo := models.NewSalesRepository(db)
	configRepo := models.NewSiteConfigRepository(db)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, catalog reads fall back to postgres", zap.Error(err))
		}
	}
	catalogCache := cache.NewCatalogCache(redisClient, productsRepo, cfg.CatalogCacheTTL, logger)

	var publisher checkout.SalePublisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		conn, ch, err := events.SetupConn(cfg.AMQPURL, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		defer ch.Close()
		publisher = events.NewAMQPPublisher(ch)
	}

	var images products.ImageUploader = storage.Disabled{}
	if cfg.S3Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
		if err != nil {
			return err
		}
		images = uploader
	} else {
		logger.Warn("S3_BUCKET not set, image uploads disabled")
	}

	var obs observer = metrics.Noop{}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		obs = m
	}

	sessions := session.NewStore(cfg.SessionTTL)
	orchestrator := checkout.NewOrchestrator(productsRepo, salesRepo, catalogCache, publisher, obs, logger)

	catalogHandler := catalog.NewCatalogHandler(catalogCache)
	categoryHandler := categories.NewCategoryHandler(categoriesRepo)
	landingHandler := landing.NewLandingHandler(configRepo, logger)
	menuHandler := menu.NewMenuHandler(catalogCache, logger)
	posHandler := pos.NewPOSHandler(sessions, catalogCache, orchestrator, logger)
	productsHandler := products.NewProductsHandler(productsRepo, images, catalogCache, logger)
	salesHandler := sales.NewSalesHandler(salesRepo, cfg.Timezone, logger)
	dashboardHandler := dashboard.NewDashboardHandler(salesRepo, cfg.Timezone, logger)
	configHandler := siteconfig.NewConfigHandler(configRepo, logger)

	mux := http.NewServeMux()
	admin := api.RequireAdmin(cfg.AdminToken)
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, admin(h))
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			api.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		api.OKResponse(w, map[string]string{"status": "ok"})
	})
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	mux.HandleFunc("GET /api/landing", landingHandler.HandleGet)
	mux.HandleFunc("GET /api/menu", menuHandler.HandleGet)
	mux.HandleFunc("GET /api/catalog", catalogHandler.HandleGet)
	mux.HandleFunc("GET /api/catalog/{id}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("GET /api/categories", categoryHandler.HandleGetAll)

	protected("POST /api/pos/sessions", posHandler.HandleCreateSession)
	protected("GET /api/pos/sessions/{id}", posHandler.HandleGetSession)
	protected("DELETE /api/pos/sessions/{id}", posHandler.HandleDeleteSession)
	protected("POST /api/pos/sessions/{id}/items", posHandler.HandleAddItem)
	protected("PATCH /api/pos/sessions/{id}/items/{productID}", posHandler.HandleUpdateItem)
	protected("DELETE /api/pos/sessions/{id}/items/{productID}", posHandler.HandleRemoveItem)
	protected("DELETE /api/pos/sessions/{id}/items", posHandler.HandleClearCart)
	protected("PUT /api/pos/sessions/{id}/payment", posHandler.HandleSelectPayment)
	protected("POST /api/pos/sessions/{id}/payment/back", posHandler.HandlePaymentBack)
	protected("DELETE /api/pos/sessions/{id}/payment", posHandler.HandleClosePayment)
	protected("POST /api/pos/sessions/{id}/checkout", posHandler.HandleCheckout)
	protected("POST /api/change", posHandler.HandleChange)

	protected("GET /api/admin/products", productsHandler.HandleList)
	protected("POST /api/admin/products", productsHandler.HandleCreate)
	protected("PUT /api/admin/products/{id}", productsHandler.HandleUpdate)
	protected("PATCH /api/admin/products/{id}/active", productsHandler.HandleToggleActive)
	protected("DELETE /api/admin/products/{id}", productsHandler.HandleDelete)
	protected("POST /api/admin/products/images", productsHandler.HandleUploadImage)
	protected("POST /api/admin/categories", categoryHandler.HandleCreate)

	protected("GET /api/admin/sales", salesHandler.HandleList)
	protected("GET /api/admin/sales/recent", salesHandler.HandleRecent)
	protected("GET /api/admin/sales/{id}", salesHandler.HandleGet)
	protected("DELETE /api/admin/sales/{id}", salesHandler.HandleDelete)
	protected("GET /api/admin/dashboard", dashboardHandler.HandleGet)
	protected("GET /api/admin/config", configHandler.HandleGet)
	protected("PUT /api/admin/config/{id}", configHandler.HandleUpdate)

	handler := otelhttp.NewHandler(api.AccessLog(logger, obs)(mux), "pos")

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTPTimeout,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval, func(removed int) {
			logger.Info("expired pos sessions", zap.Int("removed", removed))
		})
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
