// Package cart отвечает на вопросы о корзине пользователя по уже загруженным заказам:
// сколько в ней позиций, на какую сумму и что показать в превью.
package cart

import (
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// PreviewLine — строка превью корзины
type PreviewLine struct {
	ImageURL  string          `json:"image_url"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CartPreview — превью корзины. Empty выставлен, когда активной корзины нет.
type CartPreview struct {
	Empty bool          `json:"empty"`
	Lines []PreviewLine `json:"lines"`
}

// EmptyPreview — превью для анонимного пользователя или пользователя без корзины
var EmptyPreview = CartPreview{Empty: true}

// FindActiveCart ищет среди orders незавершённый заказ пользователя.
// Для анонимного пользователя и при отсутствии корзины возвращает ok == false.
func FindActiveCart(identity models.Identity, orders []models.Order) (order models.Order, ok bool) {
	userID, authenticated := identity.UserID()
	if !authenticated {
		return models.Order{}, false
	}
	for _, o := range orders {
		if o.UserID == userID && !o.Ordered {
			return o, true
		}
	}
	return models.Order{}, false
}

// ItemCount — число различных позиций в корзине (не сумма количеств)
func ItemCount(identity models.Identity, orders []models.Order) int {
	order, ok := FindActiveCart(identity, orders)
	if !ok {
		return 0
	}
	return len(order.Items)
}

// ItemPrice — итоговая сумма корзины с учётом скидок
func ItemPrice(identity models.Identity, orders []models.Order) decimal.Decimal {
	order, ok := FindActiveCart(identity, orders)
	if !ok {
		return decimal.Zero
	}
	return pricing.OrderTotal(order)
}

// Preview собирает строки превью в порядке добавления позиций в корзину
func Preview(identity models.Identity, orders []models.Order) CartPreview {
	order, ok := FindActiveCart(identity, orders)
	if !ok {
		return EmptyPreview
	}

	lines := make([]PreviewLine, 0, len(order.Items))
	for _, oi := range order.Items {
		lines = append(lines, PreviewLine{
			ImageURL:  oi.Item.ImageURL(),
			Title:     oi.Item.Title,
			Quantity:  oi.Quantity,
			UnitPrice: oi.Item.Price,
		})
	}
	return CartPreview{Lines: lines}
}
