package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/pricing"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	ErrNoActiveOrder = errors.New("no active order")
	ErrItemNotInCart = errors.New("item is not in the cart")
)

// CartAction — что произошло с корзиной в результате операции
type CartAction string

const (
	ActionAdded           CartAction = "added"
	ActionQuantityUpdated CartAction = "quantity_updated"
	ActionRemoved         CartAction = "removed"
)

// CartSummary — сводка корзины для шапки сайта
type CartSummary struct {
	Count   int              `json:"count"`
	Total   decimal.Decimal  `json:"total"`
	Preview cart.CartPreview `json:"preview"`
}

type OrderLineSummary struct {
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Quantity      int                 `json:"quantity"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	DiscountTotal decimal.NullDecimal `json:"discount_total"`
	AmountSaved   decimal.Decimal     `json:"amount_saved"`
	FinalPrice    decimal.Decimal     `json:"final_price"`
}

type OrderSummary struct {
	OrderID int64              `json:"order_id"`
	Lines   []OrderLineSummary `json:"lines"`
	Total   decimal.Decimal    `json:"total"`
}

type CartService interface {
	Summary(ctx context.Context, identity models.Identity) (*CartSummary, error)
	OrderSummary(ctx context.Context, userID int64) (*OrderSummary, error)
	AddToCart(ctx context.Context, userID int64, slug string) (CartAction, error)
	RemoveFromCart(ctx context.Context, userID int64, slug string) error
	RemoveSingleItem(ctx context.Context, userID int64, slug string) (CartAction, error)
}

type cartService struct {
	log         *slog.Logger
	db          *sql.DB
	catalogRepo storage.CatalogStorage
	orderRepo   storage.OrderStorage
	now         func() time.Time
}

func NewCartService(log *slog.Logger, db *sql.DB, catalogRepo storage.CatalogStorage, orderRepo storage.OrderStorage) CartService {
	return &cartService{
		log:         log,
		db:          db,
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		now:         time.Now,
	}
}

// Summary считает количество позиций, сумму и превью корзины.
// Для анонимного пользователя хранилище не опрашивается.
func (s *cartService) Summary(ctx context.Context, identity models.Identity) (*CartSummary, error) {
	const op = "service.CartService.Summary"
	userID, ok := identity.UserID()
	if !ok {
		return &CartSummary{Total: decimal.Zero, Preview: cart.EmptyPreview}, nil
	}
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.FindOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}

	return &CartSummary{
		Count:   cart.ItemCount(identity, orders),
		Total:   cart.ItemPrice(identity, orders),
		Preview: cart.Preview(identity, orders),
	}, nil
}

// OrderSummary возвращает активную корзину с расчётом по каждой позиции
func (s *cartService) OrderSummary(ctx context.Context, userID int64) (*OrderSummary, error) {
	const op = "service.CartService.OrderSummary"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	order, err := s.orderRepo.FindActiveCart(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Info("user has no active order")
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveOrder)
		}
		logger.Error("failed to get active cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get active cart: %w", op, err)
	}

	summary := &OrderSummary{
		OrderID: order.ID,
		Lines:   make([]OrderLineSummary, 0, len(order.Items)),
		Total:   pricing.OrderTotal(*order),
	}
	for _, line := range order.Items {
		discountTotal, hasDiscount := pricing.LineDiscountTotal(line)
		summary.Lines = append(summary.Lines, OrderLineSummary{
			Title:         line.Item.Title,
			Slug:          line.Item.Slug,
			Quantity:      line.Quantity,
			Price:         line.Item.Price,
			DiscountPrice: line.Item.DiscountPrice,
			TotalPrice:    pricing.LineTotal(line),
			DiscountTotal: decimal.NullDecimal{Decimal: discountTotal, Valid: hasDiscount},
			AmountSaved:   pricing.AmountSaved(line),
			FinalPrice:    pricing.LineFinalPrice(line),
		})
	}
	return summary, nil
}

// AddToCart добавляет товар в активную корзину, создавая её при необходимости.
// Повторное добавление увеличивает количество.
func (s *cartService) AddToCart(ctx context.Context, userID int64, slug string) (CartAction, error) {
	const op = "service.CartService.AddToCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("slug", slug))
	logger.Info("adding item to cart")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	item, err := s.catalogRepo.GetItemBySlugTx(ctx, tx, slug)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to get item", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	order, err := s.orderRepo.LockActiveCartTx(ctx, tx, userID)
	if errors.Is(err, storage.ErrOrderNotFound) {
		// если корзину успел создать параллельный запрос, CreateCartTx вернёт её
		order, err = s.orderRepo.CreateCartTx(ctx, tx, userID, s.now())
	}
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to get active cart", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get active cart: %w", op, err)
	}

	action := ActionAdded
	if line, ok := findLine(order, item.ID); ok {
		err = s.orderRepo.UpdateOrderItemQuantityTx(ctx, tx, line.ID, quantityOf(line)+1)
		action = ActionQuantityUpdated
	} else {
		newLine := models.NewOrderItem(userID, *item)
		err = s.orderRepo.CreateOrderItemTx(ctx, tx, order.ID, userID, item.ID, newLine.Quantity)
	}
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to save order item", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to save order item: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("cart updated", slog.String("action", string(action)))
	return action, nil
}

// RemoveFromCart удаляет позицию из корзины целиком
func (s *cartService) RemoveFromCart(ctx context.Context, userID int64, slug string) error {
	const op = "service.CartService.RemoveFromCart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("slug", slug))

	return s.withCartLine(ctx, op, logger, userID, slug, func(tx *sql.Tx, line models.OrderItem) (CartAction, error) {
		return ActionRemoved, s.orderRepo.DeleteOrderItemTx(ctx, tx, line.ID)
	})
}

// RemoveSingleItem уменьшает количество на единицу; позиция с количеством 1 удаляется
func (s *cartService) RemoveSingleItem(ctx context.Context, userID int64, slug string) (CartAction, error) {
	const op = "service.CartService.RemoveSingleItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("slug", slug))

	var action CartAction
	err := s.withCartLine(ctx, op, logger, userID, slug, func(tx *sql.Tx, line models.OrderItem) (CartAction, error) {
		if quantityOf(line) > 1 {
			action = ActionQuantityUpdated
			return action, s.orderRepo.UpdateOrderItemQuantityTx(ctx, tx, line.ID, quantityOf(line)-1)
		}
		action = ActionRemoved
		return action, s.orderRepo.DeleteOrderItemTx(ctx, tx, line.ID)
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// withCartLine находит позицию товара в заблокированной корзине и применяет к ней mutate в одной транзакции
func (s *cartService) withCartLine(
	ctx context.Context,
	op string,
	logger *slog.Logger,
	userID int64,
	slug string,
	mutate func(tx *sql.Tx, line models.OrderItem) (CartAction, error),
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	item, err := s.catalogRepo.GetItemBySlugTx(ctx, tx, slug)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to get item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	order, err := s.orderRepo.LockActiveCartTx(ctx, tx, userID)
	if err != nil {
		rollback(tx, logger)
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Info("user has no active order")
			return fmt.Errorf("%s: %w", op, ErrNoActiveOrder)
		}
		logger.Error("failed to get active cart", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get active cart: %w", op, err)
	}

	line, ok := findLine(order, item.ID)
	if !ok {
		rollback(tx, logger)
		logger.Info("item is not in the cart")
		return fmt.Errorf("%s: %w", op, ErrItemNotInCart)
	}

	action, err := mutate(tx, line)
	if err != nil {
		rollback(tx, logger)
		logger.Error("failed to update order item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update order item: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("cart updated", slog.String("action", string(action)))
	return nil
}

func findLine(order *models.Order, itemID int64) (models.OrderItem, bool) {
	for _, line := range order.Items {
		if line.Item.ID == itemID {
			return line, true
		}
	}
	return models.OrderItem{}, false
}

func quantityOf(line models.OrderItem) int {
	if line.Quantity < 1 {
		return 1
	}
	return line.Quantity
}
