package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devta181281/flexfit/internal/clock"
	"github.com/devta181281/flexfit/internal/events"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/shared/apperr"
	"github.com/devta181281/flexfit/internal/shared/bookingcode"
	"github.com/devta181281/flexfit/internal/shared/qr"
	"github.com/devta181281/flexfit/internal/storage"
)

// EventPublisher fans booking lifecycle events out to interested consumers.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Service struct {
	store       Store
	gyms        gyms.Directory
	codes       *bookingcode.Generator
	clk         clock.Clock
	pub         EventPublisher  // optional
	artifacts   storage.Storage // optional
	allowUnpaid bool
	logger      *slog.Logger
}

func NewService(store Store, dir gyms.Directory, codes *bookingcode.Generator, clk clock.Clock) *Service {
	return &Service{
		store:  store,
		gyms:   dir,
		codes:  codes,
		clk:    clk,
		logger: slog.Default(),
	}
}

func (s *Service) SetLogger(l *slog.Logger) { s.logger = l }

func (s *Service) SetPublisher(p EventPublisher) { s.pub = p }

func (s *Service) SetArtifactStore(st storage.Storage) { s.artifacts = st }

// AllowUnpaid enables the trusted dev/test path where bookings may be created
// without consuming a payment receipt.
func (s *Service) AllowUnpaid(v bool) { s.allowUnpaid = v }

type CreateInput struct {
	UserID      string
	GymID       string
	BookingDate time.Time
	// Receipt to consume. Empty only on the trusted path.
	ReceiptID string
}

// Create issues a CONFIRMED booking with a fresh unique code and QR artifact.
// The consumed receipt is what proves payment; consumption is transactional
// with the insert so a receipt cannot mint two bookings.
func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	if in.UserID == "" || in.GymID == "" || in.BookingDate.IsZero() {
		return Booking{}, apperr.InvalidErr("Missing booking details.", nil)
	}
	if in.ReceiptID == "" && !s.allowUnpaid {
		return Booking{}, apperr.BusinessRuleErr("Payment verification required.")
	}

	gym, err := s.gyms.FindGym(ctx, in.GymID)
	if err != nil {
		if errors.Is(err, gyms.ErrGymNotFound) {
			return Booking{}, apperr.NotFoundErr("Gym not found.")
		}
		return Booking{}, err
	}
	if !gym.Approved() {
		return Booking{}, apperr.BusinessRuleErr("Gym is not open for bookings.")
	}

	code, err := s.codes.Next(func(c string) (bool, error) {
		return s.store.CodeExists(ctx, c)
	})
	if err != nil {
		return Booking{}, apperr.Wrap(err)
	}

	artifact, err := qr.Encode(code)
	if err != nil {
		// manual entry still works with the raw code, so don't fail the booking
		s.logger.WarnContext(ctx, "qr generation failed, storing raw code", "err", err)
		artifact = code
	}

	now := s.clk.Now()
	b := Booking{
		ID:          uuid.NewString(),
		BookingCode: code,
		UserID:      in.UserID,
		GymID:       gym.ID,
		BookingDate: in.BookingDate,
		Amount:      gym.DayPassPrice,
		Status:      StatusConfirmed,
		QRArtifact:  artifact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.ReceiptID != "" {
		rid := in.ReceiptID
		b.ReceiptID = &rid
	}
	if s.artifacts != nil {
		if png, perr := qr.EncodePNG(code); perr == nil {
			if url, uerr := s.artifacts.PutPNG(ctx, b.ID, png); uerr == nil {
				b.ArtifactURL = &url
			} else {
				s.logger.WarnContext(ctx, "artifact upload failed", "booking_id", b.ID, "err", uerr)
			}
		}
	}

	if err := s.store.Create(ctx, &b, in.ReceiptID); err != nil {
		switch {
		case errors.Is(err, ErrReceiptUnavailable):
			return Booking{}, apperr.ConflictErr("Payment receipt already used.")
		case errors.Is(err, ErrDuplicateCode):
			return Booking{}, apperr.ConflictErr("Could not allocate a booking code, please retry.")
		default:
			return Booking{}, err
		}
	}

	s.publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		UserID:      b.UserID,
		GymID:       b.GymID,
		BookingDate: b.BookingDate.Format("2006-01-02"),
		Amount:      b.Amount,
	})

	s.logger.InfoContext(ctx, "booking confirmed",
		"booking_id", b.ID, "gym_id", b.GymID, "date", b.BookingDate.Format("2006-01-02"))
	return b, nil
}

type RedeemInput struct {
	GymID   string
	OwnerID string
	Code    string
}

// Redeem runs the check-in state machine. Check order is deliberate: hard
// ownership/not-found failures first, then status, then the date gate, so the
// owner always sees the most actionable reason. Only steps 1-2 produce hard
// errors; the rest are soft results.
func (s *Service) Redeem(ctx context.Context, in RedeemInput) (RedemptionResult, error) {
	gym, err := s.gyms.FindGym(ctx, in.GymID)
	if err != nil {
		if errors.Is(err, gyms.ErrGymNotFound) {
			return RedemptionResult{}, apperr.NotFoundErr("Gym not found.")
		}
		return RedemptionResult{}, err
	}
	if gym.OwnerID != in.OwnerID {
		return RedemptionResult{}, apperr.ForbiddenErr("You can only validate bookings for your own gym.")
	}

	code := bookingcode.Normalize(in.Code)
	b, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return RedemptionResult{Valid: false, Message: "Invalid booking code"}, nil
		}
		return RedemptionResult{}, err
	}

	if b.GymID != gym.ID {
		return RedemptionResult{Valid: false, Message: "This booking is not for your gym", Booking: &b}, nil
	}
	if b.Status == StatusUsed {
		return RedemptionResult{Valid: false, Message: "This booking has already been used", Booking: &b}, nil
	}
	if b.Status == StatusExpired {
		return RedemptionResult{Valid: false, Message: "This booking has expired", Booking: &b}, nil
	}
	if b.Status == StatusCancelled {
		return RedemptionResult{Valid: false, Message: "This booking has been cancelled", Booking: &b}, nil
	}

	now := s.clk.Now()
	if !sameCalendarDay(b.BookingDate, now) {
		msg := fmt.Sprintf("This booking is for %s, not today", b.BookingDate.Format("2 Jan 2006"))
		return RedemptionResult{Valid: false, Message: msg, Booking: &b}, nil
	}

	ok, err := s.store.MarkUsed(ctx, b.ID, now)
	if err != nil {
		return RedemptionResult{}, err
	}
	if !ok {
		// lost the race to a concurrent check-in of the same code
		fresh, ferr := s.store.FindByID(ctx, b.ID)
		if ferr != nil {
			fresh = b
		}
		return RedemptionResult{Valid: false, Message: "This booking has already been used", Booking: &fresh}, nil
	}

	b.Status = StatusUsed
	b.UsedAt = &now
	b.UpdatedAt = now

	s.publish(ctx, events.BookingRedeemed, events.BookingRedeemedEvent{
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		GymID:       b.GymID,
		RedeemedAt:  now.Unix(),
	})

	s.logger.InfoContext(ctx, "booking redeemed", "booking_id", b.ID, "gym_id", b.GymID)
	return RedemptionResult{Valid: true, Message: "Check-in successful", Booking: &b}, nil
}

// MarkExpired sweeps CONFIRMED bookings whose date has fully elapsed (one
// full day of grace) into EXPIRED. Idempotent; a second run changes nothing.
func (s *Service) MarkExpired(ctx context.Context) (int64, error) {
	now := s.clk.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	n, err := s.store.ExpireBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, events.BookingsExpired, events.BookingsExpiredEvent{
			Count:   n,
			SweptAt: now.Unix(),
		})
		s.logger.InfoContext(ctx, "expiry sweep completed", "expired", n)
	}
	return n, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) publish(ctx context.Context, key string, v any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishJSON(ctx, key, v); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "key", key, "err", err)
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
