// Package app wires the FoodKing API server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/foodking/internal/domain/customer"
	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/order"
	"github.com/xenking/foodking/internal/domain/payment"
	"github.com/xenking/foodking/internal/handler"
	"github.com/xenking/foodking/internal/repository"
	"github.com/xenking/foodking/pkg/health"
	"github.com/xenking/foodking/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("restaurant", cfg.Restaurant.Name),
		zap.Float64("delivery_radius_km", cfg.Delivery.MaxRadiusKm),
		zap.Bool("strict_lifecycle", cfg.Orders.StrictLifecycle),
	)

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New(lg.Named("health"))
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	// Repositories.
	menuRepo := repository.NewMenuRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	apikeyRepo := repository.NewAPIKeyRepository(pool)

	// Domain services.
	delivery := geo.Config{
		Origin:      geo.Coordinate{Lat: cfg.Delivery.OriginLat, Lng: cfg.Delivery.OriginLng},
		MaxRadiusKm: cfg.Delivery.MaxRadiusKm,
	}
	orderService, err := order.NewService(
		geo.NewChecker(delivery),
		menuRepo,
		customer.NewService(customerRepo),
		orderRepo,
		order.Config{
			StrictLifecycle: cfg.Orders.StrictLifecycle,
			EstimatedTime:   cfg.Delivery.EstimatedTime,
		},
		order.WithMeterProvider(m.MeterProvider()),
		order.WithTracerProvider(m.TracerProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}

	verifier, err := payment.NewVerifier(cfg.Payment.KeySecret, orderRepo, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create payment verifier")
	}
	if !verifier.Configured() {
		lg.Warn("Payment gateway secret is not set, online payment verification is disabled")
	}

	// HTTP handlers.
	h := handler.NewHandler(
		handler.HandlerConfig{
			RestaurantName: cfg.Restaurant.Name,
			Delivery:       delivery,
			PaymentKeyID:   cfg.Payment.KeyID,
		},
		menu.NewService(menuRepo),
		orderService,
		verifier,
	)
	securityHandler := handler.NewSecurityHandler(apikeyRepo, []byte(cfg.APIKeyPepper))

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, securityHandler)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(lg.Named("http")),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", handler.APIKeyHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
				Skip:   isProbe,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("foodking-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	healthSvc.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gCtx, 10*time.Second)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}

func isProbe(r *http.Request) bool {
	return r.URL.Path == "/livez" || r.URL.Path == "/readyz"
}
