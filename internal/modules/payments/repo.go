package payments

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type Store interface {
	CreateOrder(ctx context.Context, o *PaymentOrder) error
	FindOrderByGatewayID(ctx context.Context, gatewayOrderID string) (PaymentOrder, error)
	CreateReceipt(ctx context.Context, r *PaymentReceipt) error
	FindReceipt(ctx context.Context, gatewayOrderID, gatewayPayID string) (PaymentReceipt, error)
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateOrder(ctx context.Context, o *PaymentOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *Repo) FindOrderByGatewayID(ctx context.Context, gatewayOrderID string) (PaymentOrder, error) {
	var o PaymentOrder
	err := r.db.WithContext(ctx).First(&o, "gateway_order_id = ?", gatewayOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentOrder{}, ErrOrderNotFound
		}
		return PaymentOrder{}, err
	}
	return o, nil
}

// CreateReceipt relies on the unique (gateway_order_id, gateway_pay_id)
// index; a replayed callback surfaces as ErrDuplicateReceipt instead of a
// second row.
func (r *Repo) CreateReceipt(ctx context.Context, rec *PaymentReceipt) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isDup(err) {
			return ErrDuplicateReceipt
		}
		return err
	}
	return nil
}

func (r *Repo) FindReceipt(ctx context.Context, gatewayOrderID, gatewayPayID string) (PaymentReceipt, error) {
	var rec PaymentReceipt
	err := r.db.WithContext(ctx).
		First(&rec, "gateway_order_id = ? AND gateway_pay_id = ?", gatewayOrderID, gatewayPayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentReceipt{}, ErrReceiptNotFound
		}
		return PaymentReceipt{}, err
	}
	return rec, nil
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
