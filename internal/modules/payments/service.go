package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/devta181281/flexfit/internal/clock"
	"github.com/devta181281/flexfit/internal/modules/gyms"
	"github.com/devta181281/flexfit/internal/shared/apperr"
)

// AdmissionPolicy gates order creation before any gateway interaction.
type AdmissionPolicy interface {
	CanAdmit(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	store    Store
	gyms     gyms.Directory
	gateway  Gateway
	admit    AdmissionPolicy
	secret   string
	currency string
	clk      clock.Clock
	logger   *slog.Logger
}

func NewService(store Store, dir gyms.Directory, gw Gateway, admit AdmissionPolicy, secret, currency string, clk clock.Clock) *Service {
	return &Service{
		store:    store,
		gyms:     dir,
		gateway:  gw,
		admit:    admit,
		secret:   secret,
		currency: currency,
		clk:      clk,
		logger:   slog.Default(),
	}
}

func (s *Service) SetLogger(l *slog.Logger) { s.logger = l }

type CreateOrderInput struct {
	UserID      string
	GymID       string
	BookingDate time.Time
}

type CreateOrderResult struct {
	OrderID     string
	Amount      float64 // rupees, for display
	AmountMinor int64   // paise, what the gateway was asked to collect
	Currency    string
}

// CreateOrder runs the admission check, prices the pass from the gym's
// current rate, and opens a gateway order tagged with gym/user/date metadata.
// The admission check runs first so we never open gateway orders that can
// never be fulfilled.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.UserID == "" || in.GymID == "" || in.BookingDate.IsZero() {
		return CreateOrderResult{}, apperr.InvalidErr("Missing booking details.", nil)
	}

	ok, err := s.admit.CanAdmit(ctx, in.UserID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if !ok {
		return CreateOrderResult{}, apperr.BusinessRuleErr("Booking limit reached.")
	}

	gym, err := s.gyms.FindGym(ctx, in.GymID)
	if err != nil {
		if errors.Is(err, gyms.ErrGymNotFound) {
			return CreateOrderResult{}, apperr.NotFoundErr("Gym not found.")
		}
		return CreateOrderResult{}, err
	}
	if !gym.Approved() {
		return CreateOrderResult{}, apperr.BusinessRuleErr("Gym is not open for bookings.")
	}

	amount := gym.DayPassPrice
	amountMinor := int64(math.Round(amount * 100))
	receiptRef := uuid.NewString()
	date := in.BookingDate.Format("2006-01-02")

	resp, err := s.gateway.OpenOrder(ctx, OpenOrderRequest{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		ReceiptRef:  receiptRef,
		Notes: map[string]string{
			"gym_id":       gym.ID,
			"user_id":      in.UserID,
			"booking_date": date,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "gateway order creation failed", "gym_id", gym.ID, "err", err)
		return CreateOrderResult{}, apperr.BusinessRuleErr("Failed to create payment order.")
	}

	meta, _ := json.Marshal(map[string]string{
		"gym_id":       gym.ID,
		"user_id":      in.UserID,
		"booking_date": date,
		"receipt_ref":  receiptRef,
	})

	order := PaymentOrder{
		ID:             uuid.NewString(),
		GatewayOrderID: resp.OrderID,
		UserID:         in.UserID,
		GymID:          gym.ID,
		BookingDate:    in.BookingDate,
		Amount:         amount,
		Currency:       s.currency,
		Metadata:       datatypes.JSON(meta),
		CreatedAt:      s.clk.Now(),
	}
	if err := s.store.CreateOrder(ctx, &order); err != nil {
		return CreateOrderResult{}, err
	}

	s.logger.InfoContext(ctx, "payment order opened",
		"order_id", resp.OrderID, "gym_id", gym.ID, "amount_minor", amountMinor)

	return CreateOrderResult{
		OrderID:     resp.OrderID,
		Amount:      amount,
		AmountMinor: amountMinor,
		Currency:    s.currency,
	}, nil
}

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
	// Settled amount as reported by the client, rupees. Informational; the
	// persisted order amount is authoritative and a disagreement is rejected.
	Amount float64
}

// Verify proves that the claimed payment corresponds to a gateway-authorized
// transaction and persists an immutable receipt. It is the gate in front of
// booking creation; without it a client could fabricate a successful payment.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (string, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return "", apperr.InvalidErr("Missing payment verification details.", nil)
	}

	order, err := s.store.FindOrderByGatewayID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return "", apperr.NotFoundErr("Payment order not found.")
		}
		return "", err
	}

	if !VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature) {
		// the expected signature must never appear in logs or responses
		s.logger.WarnContext(ctx, "payment signature mismatch", "order_id", in.OrderID)
		return "", apperr.BusinessRuleErr("Invalid payment signature.")
	}

	if in.Amount != 0 && math.Round(in.Amount*100) != math.Round(order.Amount*100) {
		s.logger.WarnContext(ctx, "payment amount mismatch",
			"order_id", in.OrderID, "claimed", in.Amount, "expected", order.Amount)
		return "", apperr.BusinessRuleErr("Payment amount mismatch.")
	}

	receipt := PaymentReceipt{
		ID:             uuid.NewString(),
		GatewayOrderID: in.OrderID,
		GatewayPayID:   in.PaymentID,
		Signature:      in.Signature,
		Amount:         order.Amount,
		Status:         ReceiptStatusSuccess,
		CreatedAt:      s.clk.Now(),
	}
	if err := s.store.CreateReceipt(ctx, &receipt); err != nil {
		if errors.Is(err, ErrDuplicateReceipt) {
			return s.reverify(ctx, in.OrderID, in.PaymentID)
		}
		return "", err
	}

	s.logger.InfoContext(ctx, "payment verified", "order_id", in.OrderID, "receipt_id", receipt.ID)
	return receipt.ID, nil
}

// reverify handles a replay of an already-verified triple. The signature has
// been re-checked by the caller, so identical inputs are indistinguishable
// from the original call; returning the stored receipt keeps retries safe
// when an earlier attempt died between verification and booking creation.
// Only a receipt that already minted a booking is refused.
func (s *Service) reverify(ctx context.Context, orderID, payID string) (string, error) {
	existing, err := s.store.FindReceipt(ctx, orderID, payID)
	if err != nil {
		return "", err
	}
	if existing.ConsumedAt != nil {
		return "", apperr.ConflictErr("Payment already verified.")
	}
	s.logger.InfoContext(ctx, "payment verification replayed",
		"order_id", orderID, "receipt_id", existing.ID)
	return existing.ID, nil
}

// Order exposes the persisted order for callers that need the gym/user/date
// the payment was opened for (booking creation reads these back rather than
// trusting the client again).
func (s *Service) Order(ctx context.Context, gatewayOrderID string) (PaymentOrder, error) {
	order, err := s.store.FindOrderByGatewayID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return PaymentOrder{}, apperr.NotFoundErr("Payment order not found.")
		}
		return PaymentOrder{}, err
	}
	return order, nil
}
