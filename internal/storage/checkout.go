package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/storefront/internal/domain/models"
)

// CheckoutStorage сохраняет платёжные адреса и платежи; вызывается внутри транзакции оформления.
type CheckoutStorage interface {
	CreateBillingAddressTx(ctx context.Context, tx *sql.Tx, addr *models.BillingAddress) (int64, error)
	CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int64, error)
}

type checkoutRepository struct {
	db *sql.DB
}

func NewCheckoutRepository(db *sql.DB) CheckoutStorage {
	return &checkoutRepository{db: db}
}

// CreateBillingAddressTx сохраняет адрес. Новый адрес по умолчанию снимает этот признак с прежнего.
func (r *checkoutRepository) CreateBillingAddressTx(ctx context.Context, tx *sql.Tx, addr *models.BillingAddress) (int64, error) {
	if addr.Default {
		_, err := tx.ExecContext(ctx,
			"UPDATE billing_addresses SET is_default = FALSE WHERE user_id = $1 AND is_default",
			addr.UserID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to reset default billing address: %w", err)
		}
	}

	query := `INSERT INTO billing_addresses (user_id, street_address, apartment_address, country, zip, is_default)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query,
		addr.UserID, addr.StreetAddress, addr.ApartmentAddress, addr.Country, addr.Zip, addr.Default,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create billing address: %w", err)
	}
	addr.ID = id
	return id, nil
}

func (r *checkoutRepository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (charge_id, user_id, method, amount, timestamp)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query,
		payment.ChargeID, payment.UserID, payment.Method, payment.Amount, payment.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}
	payment.ID = id
	return id, nil
}
