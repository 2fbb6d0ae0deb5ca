package main

import (
	"context"
	"log"
	"os"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/devta181281/flexfit/internal/clock"
	"github.com/devta181281/flexfit/internal/config"
	apphttp "github.com/devta181281/flexfit/internal/http"
	"github.com/devta181281/flexfit/internal/modules/bookings"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/modules/payments"
	"github.com/devta181281/flexfit/internal/modules/users"
	"github.com/devta181281/flexfit/internal/mq"
	"github.com/devta181281/flexfit/internal/shared/bookingcode"
	"github.com/devta181281/flexfit/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&users.User{},
		&gyms.Gym{},
		&payments.PaymentOrder{},
		&payments.PaymentReceipt{},
		&bookings.Booking{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	clk := clock.NewSystem()

	tokens := users.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpireMin)*time.Minute)
	userSvc := users.NewService(db, tokens)
	gymRepo := gyms.NewRepo(db)

	bookRepo := bookings.NewRepo(db)
	admission := bookings.NewAdmission(bookRepo, cfg.MaxBookingsPerUser)

	gateway := payments.NewRazorpayGateway(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)
	payRepo := payments.NewRepo(db)
	paySvc := payments.NewService(payRepo, gymRepo, gateway, admission, cfg.GatewayKeySecret, cfg.Currency, clk)
	paySvc.SetLogger(logger)

	codes := bookingcode.NewGenerator(cfg.BookingCodePrefix, cfg.BookingCodeLength, 5)
	bookSvc := bookings.NewService(bookRepo, gymRepo, codes, clk)
	bookSvc.SetLogger(logger)
	bookSvc.AllowUnpaid(cfg.AllowUnpaidBookings)

	if cfg.AMQPURL != "" {
		pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		bookSvc.SetPublisher(pub)
	}

	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if store.Storage != nil {
		bookSvc.SetArtifactStore(store.Storage)
		logger.Info("artifact storage enabled", "driver", store.Driver)
	}

	// Daily in-process sweep. Deployments with an external scheduler can run
	// cmd/tools/expiresweep instead.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := bookSvc.MarkExpired(ctx); err != nil {
				logger.Error("expiry sweep failed", "err", err)
			}
		}
	}()

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:   logger,
		Tokens:   tokens,
		Users:    userSvc,
		Gyms:     gymRepo,
		Payments: paySvc,
		Bookings: bookSvc,
	})

	logger.Info("listening", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
