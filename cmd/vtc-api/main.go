// README: Entry point; loads config, applies migrations, wires services and serves the HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"vtc/internal/config"
	httptransport "vtc/internal/http"
	"vtc/internal/infra"
	"vtc/internal/modules/booking"
	"vtc/internal/modules/dispatch"
	"vtc/internal/modules/driver"
	"vtc/internal/modules/fare"
	"vtc/internal/modules/notify"
	"vtc/internal/modules/role"
	"vtc/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	applied, err := migrations.Up(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "count", len(applied))

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var (
		verifier  infra.TokenVerifier
		notifiers notify.Fanout
	)
	if cfg.FirebaseEnabled() {
		app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
		if verifier, err = infra.NewFirebaseVerifier(ctx, app); err != nil {
			return err
		}
		msg, err := infra.NewMessaging(ctx, app)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, notify.NewFCMNotifier(msg))
	} else {
		verifier = infra.NewJWTVerifier(cfg.JWT.Secret)
		logger.Warn("firebase disabled; accepting HS256 JWTs and skipping push notifications")
	}

	if cfg.AMQP.URL != "" {
		publisher, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	} else {
		logger.Warn("VTC_AMQP_URL not set; booking events are not published")
	}

	rates := fare.DefaultRates()
	rates.Currency = cfg.Booking.Currency
	calc := fare.NewCalculator(rates)

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore, calc, notifiers, logger,
		booking.WithLocation(cfg.Booking.Location))

	driverSvc := driver.NewService(driver.NewStore(dbPool), logger)
	roleSvc := role.NewService(role.NewStore(dbPool))

	dispatchSvc := dispatch.NewService(bookingSvc, driverSvc, bookingStore,
		dispatch.NewRedisLocker(redisClient),
		dispatch.Config{OverlapWindow: cfg.Dispatch.OverlapWindow, LockTTL: cfg.Dispatch.LockTTL},
		logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Verifier:    verifier,
		Roles:       roleSvc,
		Fare:        calc,
		Bookings:    bookingSvc,
		Drivers:     driverSvc,
		Dispatch:    dispatchSvc,
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	return httptransport.NewServer(cfg.HTTP.Addr, router, logger).Run(ctx)
}
