package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appcart "github.com/delus-studio/storefront/internal/application/cart"
	appcatalog "github.com/delus-studio/storefront/internal/application/catalog"
	appcheckout "github.com/delus-studio/storefront/internal/application/checkout"
	appfulfillment "github.com/delus-studio/storefront/internal/application/fulfillment"
	"github.com/delus-studio/storefront/internal/config"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/order"
	"github.com/delus-studio/storefront/internal/infrastructure/gormstore"
	"github.com/delus-studio/storefront/internal/infrastructure/id"
	"github.com/delus-studio/storefront/internal/infrastructure/media"
	"github.com/delus-studio/storefront/internal/infrastructure/memory"
	"github.com/delus-studio/storefront/internal/infrastructure/observability/oteltrace"
	"github.com/delus-studio/storefront/internal/infrastructure/observability/prometrics"
	"github.com/delus-studio/storefront/internal/infrastructure/observability/telemetry"
	"github.com/delus-studio/storefront/internal/infrastructure/observability/zaplogger"
	"github.com/delus-studio/storefront/internal/infrastructure/session"
	stripeadapter "github.com/delus-studio/storefront/internal/infrastructure/stripe"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/pkg/logging"
	httppresentation "github.com/delus-studio/storefront/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "delus-storefront"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	products catalog.ProductRepository
	tracks   catalog.TrackRepository
	orders   order.Repository
	close    func() error
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service:    serviceName,
		Env:        cfg.Log.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := zaplogger.New(logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID))
	systemLogger.Info("config_loaded", observability.F("config", cfg.Summary()))
	if cfg.UsingDevSecret() {
		systemLogger.Warn("session_dev_secret_in_use")
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	counters, histograms := prometrics.Standard(prometrics.New(prometheus.DefaultRegisterer, cfg.Metrics.Namespace, ""))
	tel := telemetry.New(oteltrace.New(serviceName), zaplogger.New(baseLogger), counters, histograms)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, baseLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			systemLogger.Error("database_close_failed", observability.F("error", err))
		}
	}()

	if cfg.Database.Seed {
		if _, err := appcatalog.Seed(ctx, st.products, st.tracks, systemLogger); err != nil {
			return err
		}
	}

	overrides, err := cfg.ImageOverrides()
	if err != nil {
		return err
	}
	carts, err := session.NewCartStore(session.Options{
		Name:     cfg.Session.Name,
		Secret:   cfg.Session.Secret,
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		HTTPOnly: true,
	})
	if err != nil {
		return err
	}

	backend := stripeadapter.NewBackend("", baseLogger.Named("stripe").Sugar())
	processor := stripeadapter.NewProcessor(cfg.Stripe.SecretKey, backend, tel)
	verifier := stripeadapter.NewVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance)

	checkoutCfg := appcheckout.DefaultConfig()
	checkoutCfg.Currency = cfg.Checkout.Currency
	checkoutCfg.AllowedCountries = cfg.Checkout.AllowedCountries

	fs := afero.NewOsFs()
	handler := httppresentation.NewHandler(httppresentation.Deps{
		Catalog: appcatalog.NewService(st.products, st.tracks),
		UploadTrack: appcatalog.NewUploadTrackUseCase(st.tracks,
			media.NewStore(fs, cfg.Upload.Folder, cfg.Upload.URLPrefix, cfg.Upload.AllowedExtensions), tel),
		AddToCart:     appcart.NewAddToCartUseCase(st.products, overrides, tel),
		CreateSession: appcheckout.NewCreateSessionUseCase(processor, checkoutCfg, tel),
		Success:       appcheckout.NewSuccessService(processor),
		HandleWebhook: appfulfillment.NewHandleWebhookUseCase(verifier, processor, st.products, st.orders, id.NewUUIDGenerator(), tel),
		Carts:         carts,
	}, httppresentation.Options{
		PublishableKey: cfg.Stripe.PublishableKey,
		BaseURL:        cfg.Server.BaseURL,
		StaticFS:       fs,
		StaticDir:      cfg.Server.StaticDir,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Metrics:        promhttp.Handler(),
	}, tel.Logger(), tel)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
			return err
		}
		systemLogger.Info("http_server_stopped")
		return nil
	})
	return g.Wait()
}

func openStores(cfg config.Config, zl *zap.Logger) (*stores, error) {
	if cfg.Database.Type == "memory" {
		return &stores{
			products: memory.NewProductRepository(),
			tracks:   memory.NewTrackRepository(),
			orders:   memory.NewOrderRepository(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := gormstore.Open(gormstore.Config{
		Type:  cfg.Database.Type,
		DSN:   cfg.Database.DSN,
		Debug: cfg.Database.Debug,
	}, zl)
	if err != nil {
		return nil, err
	}
	if err := gormstore.Migrate(db); err != nil {
		_ = gormstore.Close(db)
		return nil, err
	}
	return &stores{
		products: gormstore.NewProductRepository(db),
		tracks:   gormstore.NewTrackRepository(db),
		orders:   gormstore.NewOrderRepository(db),
		close:    func() error { return gormstore.Close(db) },
	}, nil
}
