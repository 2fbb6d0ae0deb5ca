// One-shot expiry sweep, meant to be invoked by cron or any external
// scheduler. Safe to run repeatedly; the sweep is idempotent.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/devta181281/flexfit/internal/clock"
	"github.com/devta181281/flexfit/internal/config"
	"github.com/devta181281/flexfit/internal/modules/bookings"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/shared/bookingcode"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	repo := bookings.NewRepo(db)
	codes := bookingcode.NewGenerator(cfg.BookingCodePrefix, cfg.BookingCodeLength, 5)
	svc := bookings.NewService(repo, gyms.NewRepo(db), codes, clock.NewSystem())

	n, err := svc.MarkExpired(context.Background())
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	fmt.Printf("expired %d bookings\n", n)
}
