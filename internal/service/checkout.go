package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/pricing"
	"github.com/linemk/storefront/internal/refcode"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPaymentOption = errors.New("invalid payment option selected")
	ErrNoBillingAddress     = errors.New("no billing address on the order")
	ErrEmptyCart            = errors.New("cart is empty")
)

// Варианты оплаты из формы оформления заказа
const (
	PaymentOptionStripe = "S"
	PaymentOptionPayPal = "P"
)

// Способы оплаты, которые сохраняются в платеже
const (
	PaymentMethodStripe = "stripe"
	PaymentMethodPayPal = "paypal"
)

// PaymentRedirects — куда отправить пользователя после оформления для каждого шлюза
type PaymentRedirects struct {
	Stripe string
	PayPal string
}

// CheckoutForm — данные оформления. SaveInfo сохраняет адрес как адрес по умолчанию.
type CheckoutForm struct {
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
	SaveInfo         bool   `json:"save_info"`
	PaymentOption    string `json:"payment_option"`
}

// Receipt — результат оплаты заказа
type Receipt struct {
	OrderID   int64           `json:"order_id"`
	PaymentID int64           `json:"payment_id"`
	RefCode   string          `json:"ref_code"`
	Amount    decimal.Decimal `json:"amount"`
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64, form CheckoutForm) (redirectURL string, err error)
	Pay(ctx context.Context, userID int64, method, chargeID string) (*Receipt, error)
}

type checkoutService struct {
	log          *slog.Logger
	db           *sql.DB
	orderRepo    storage.OrderStorage
	checkoutRepo storage.CheckoutStorage
	redirects    PaymentRedirects
	refCode      func() string
	now          func() time.Time
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	orderRepo storage.OrderStorage,
	checkoutRepo storage.CheckoutStorage,
	redirects PaymentRedirects,
) CheckoutService {
	return &checkoutService{
		log:          log,
		db:           db,
		orderRepo:    orderRepo,
		checkoutRepo: checkoutRepo,
		redirects:    redirects,
		refCode:      refcode.Random,
		now:          time.Now,
	}
}

// Checkout сохраняет платёжный адрес, привязывает его к корзине
// и возвращает адрес страницы выбранного шлюза.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, form CheckoutForm) (string, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	var redirect string
	switch form.PaymentOption {
	case PaymentOptionStripe:
		redirect = s.redirects.Stripe
	case PaymentOptionPayPal:
		redirect = s.redirects.PayPal
	default:
		logger.Warn("invalid payment option", slog.String("option", form.PaymentOption))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidPaymentOption)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.LockActiveCartTx(ctx, tx, userID)
	if err != nil {
		rollback(tx, logger)
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Info("user has no active order")
			return "", fmt.Errorf("%s: %w", op, ErrNoActiveOrder)
		}
		logger.Error("failed to get active cart", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get active cart: %w", op, err)
	}

	addressID, err := s.checkoutRepo.CreateBillingAddressTx(ctx, tx, &models.BillingAddress{
		UserID:           userID,
		StreetAddress:    form.StreetAddress,
		ApartmentAddress: form.ApartmentAddress,
		Country:          form.Country,
		Zip:              form.Zip,
		Default:          form.SaveInfo,
	})
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to save billing address", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to save billing address: %w", op, err)
	}

	if err := s.orderRepo.SetBillingAddressTx(ctx, tx, order.ID, addressID); err != nil {
		rollback(tx, logger)
		logger.Error("failed to attach billing address", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to attach billing address: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("checkout completed", slog.Int64("orderID", order.ID), slog.String("redirect", redirect))
	return redirect, nil
}

// Pay фиксирует платёж на сумму корзины и завершает заказ.
// Само списание выполняет шлюз, сюда приходит только его идентификатор.
func (s *checkoutService) Pay(ctx context.Context, userID int64, method, chargeID string) (*Receipt, error) {
	const op = "service.CheckoutService.Pay"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("method", method))

	if method != PaymentMethodStripe && method != PaymentMethodPayPal {
		logger.Warn("unknown payment method")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPaymentOption)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.LockActiveCartTx(ctx, tx, userID)
	if err != nil {
		rollback(tx, logger)
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Info("user has no active order")
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveOrder)
		}
		logger.Error("failed to get active cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get active cart: %w", op, err)
	}

	if order.BillingAddressID == nil {
		rollback(tx, logger)
		logger.Info("order has no billing address")
		return nil, fmt.Errorf("%s: %w", op, ErrNoBillingAddress)
	}
	if len(order.Items) == 0 {
		rollback(tx, logger)
		logger.Info("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	now := s.now()
	payment := &models.Payment{
		ChargeID:  chargeID,
		UserID:    userID,
		Method:    method,
		Amount:    pricing.OrderTotal(*order),
		Timestamp: now,
	}
	paymentID, err := s.checkoutRepo.CreatePaymentTx(ctx, tx, payment)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to save payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to save payment: %w", op, err)
	}

	ref := s.refCode()
	if err := s.orderRepo.CompleteOrderTx(ctx, tx, order.ID, paymentID, ref, now); err != nil {
		rollback(tx, logger)
		logger.Error("failed to complete order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to complete order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order paid", slog.Int64("orderID", order.ID), slog.String("refCode", ref))
	return &Receipt{
		OrderID:   order.ID,
		PaymentID: paymentID,
		RefCode:   ref,
		Amount:    payment.Amount,
	}, nil
}
