package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/devta181281/flexfit/internal/modules/payments"
)

type Store interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// Create persists the booking; when receiptID is non-empty the payment
	// receipt is consumed in the same transaction.
	Create(ctx context.Context, b *Booking, receiptID string) error
	FindByCode(ctx context.Context, code string) (Booking, error)
	FindByID(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	// MarkUsed transitions CONFIRMED -> USED; returns false when the booking
	// was no longer CONFIRMED (a concurrent redemption won).
	MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)
	// ExpireBefore bulk-transitions CONFIRMED bookings dated before cutoff to
	// EXPIRED and reports how many rows changed.
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *Repo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("booking_code = ?", code).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) Create(ctx context.Context, b *Booking, receiptID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if receiptID != "" {
			// one-time token: a receipt mints at most one booking
			res := tx.WithContext(ctx).Model(&payments.PaymentReceipt{}).
				Where("id = ? AND consumed_at IS NULL", receiptID).
				Update("consumed_at", b.CreatedAt)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrReceiptUnavailable
			}
		}

		if err := tx.WithContext(ctx).Create(b).Error; err != nil {
			if isDup(err) {
				return ErrDuplicateCode
			}
			return err
		}
		return nil
	})
}

func (r *Repo) FindByCode(ctx context.Context, code string) (Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, "booking_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	return b, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	return b, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusConfirmed). // optimistic guard
		Updates(map[string]any{
			"status":     StatusUsed,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("status = ? AND booking_date < ?", StatusConfirmed, cutoff).
		Updates(map[string]any{
			"status":     StatusExpired,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
