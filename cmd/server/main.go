package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/remindly/remindly/internal/cache"
	"github.com/remindly/remindly/internal/config"
	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/integration/familydir"
	"github.com/remindly/remindly/internal/integration/revenuecat"
	"github.com/remindly/remindly/internal/logger"
	"github.com/remindly/remindly/internal/rest"
	"github.com/remindly/remindly/internal/service"
	v1 "github.com/remindly/remindly/internal/api/v1"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			provideCache,
			provideBillingProvider,
			provideFamilyDirectory,
			provideServiceParams,
			service.NewEntitlementService,
			v1.NewEntitlementHandler,
			rest.NewRouter,
		),
		fx.Invoke(
			initSentry,
			startServer,
		),
	)
	app.Run()
}

func provideCache(log *logger.Logger) cache.Cache {
	return cache.Initialize(log)
}

func provideBillingProvider(cfg *config.Configuration, log *logger.Logger) entitlement.BillingProvider {
	return revenuecat.NewClient(cfg, log)
}

func provideFamilyDirectory(cfg *config.Configuration, log *logger.Logger) entitlement.FamilyDirectory {
	return familydir.NewClient(cfg, log)
}

func provideServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	cacheClient cache.Cache,
	billingProvider entitlement.BillingProvider,
	familyDirectory entitlement.FamilyDirectory,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:          log,
		Config:          cfg,
		Cache:           cacheClient,
		BillingProvider: billingProvider,
		FamilyDirectory: familyDirectory,
	}
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sentry.Enabled {
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	log *logger.Logger,
	entitlementService service.EntitlementService,
	router *gin.Engine,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// A billing failure here is non-fatal: the engine serves the
			// fallback free status until a refresh succeeds.
			if err := entitlementService.Initialize(ctx); err != nil {
				log.Warnw("entitlement engine started with fallback status", "error", err)
			}

			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
