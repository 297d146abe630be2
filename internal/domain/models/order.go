package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem — позиция корзины/заказа: один товар в некотором количестве
type OrderItem struct {
	ID       int64 `json:"id"`
	OrderID  int64 `json:"order_id"`
	UserID   int64 `json:"user_id"`
	Item     Item  `json:"item"`
	Quantity int   `json:"quantity"`
	Ordered  bool  `json:"ordered"`
}

// NewOrderItem создаёт позицию с количеством по умолчанию
func NewOrderItem(userID int64, item Item) OrderItem {
	return OrderItem{UserID: userID, Item: item, Quantity: 1}
}

func (oi OrderItem) String() string {
	return fmt.Sprintf("%d of %s", oi.Quantity, oi.Item.Title)
}

// Order — заказ пользователя. Пока Ordered == false, это активная корзина;
// у пользователя не больше одной такой.
type Order struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"user_id"`
	RefCode          string      `json:"ref_code,omitempty"`
	Items            []OrderItem `json:"items"`
	StartDate        time.Time   `json:"start_date"`
	OrderedDate      *time.Time  `json:"ordered_date,omitempty"`
	Ordered          bool        `json:"ordered"`
	BillingAddressID *int64      `json:"billing_address_id,omitempty"`
	PaymentID        *int64      `json:"payment_id,omitempty"`
}

// BillingAddress — платёжный адрес, указанный при оформлении заказа.
// Default — адрес, сохранённый пользователем для следующих заказов; такой у пользователя один.
type BillingAddress struct {
	ID               int64  `json:"id"`
	UserID           int64  `json:"user_id"`
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address"`
	Country          string `json:"country"`
	Zip              string `json:"zip"`
	Default          bool   `json:"default"`
}

// Payment — факт оплаты заказа через платёжный шлюз
type Payment struct {
	ID        int64           `json:"id"`
	ChargeID  string          `json:"charge_id"`
	UserID    int64           `json:"user_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}
