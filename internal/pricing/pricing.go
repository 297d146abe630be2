// Package pricing считает суммы по позициям и заказам с учётом скидочной цены товара.
// Функции чистые: не обращаются к хранилищу и не меняют аргументы.
package pricing

import (
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/shopspring/decimal"
)

// quantity возвращает количество позиции; ноль означает "не указано" и считается как 1
func quantity(line models.OrderItem) decimal.Decimal {
	if line.Quantity == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(line.Quantity))
}

// LineTotal — цена товара, умноженная на количество
func LineTotal(line models.OrderItem) decimal.Decimal {
	return line.Item.Price.Mul(quantity(line))
}

// LineDiscountTotal — скидочная цена, умноженная на количество.
// ok == false, если у товара нет скидочной цены.
func LineDiscountTotal(line models.OrderItem) (total decimal.Decimal, ok bool) {
	if !line.Item.DiscountPrice.Valid {
		return decimal.Zero, false
	}
	return line.Item.DiscountPrice.Decimal.Mul(quantity(line)), true
}

// AmountSaved — разница между полной и скидочной суммой позиции.
// Скидочная цена не валидируется, поэтому результат может быть нулевым или отрицательным.
// Для товара без скидки возвращает ноль.
func AmountSaved(line models.OrderItem) decimal.Decimal {
	discount, ok := LineDiscountTotal(line)
	if !ok {
		return decimal.Zero
	}
	return LineTotal(line).Sub(discount)
}

// LineFinalPrice — вклад позиции в итог заказа
func LineFinalPrice(line models.OrderItem) decimal.Decimal {
	if discount, ok := LineDiscountTotal(line); ok {
		return discount
	}
	return LineTotal(line)
}

// OrderTotal — сумма итоговых цен всех позиций заказа
func OrderTotal(order models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, line := range order.Items {
		total = total.Add(LineFinalPrice(line))
	}
	return total
}
