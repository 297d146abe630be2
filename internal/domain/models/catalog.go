package models

import (
	"github.com/shopspring/decimal"
)

// MediaURL — префикс, по которому раздаются загруженные изображения
const MediaURL = "/media/"

// Category представляет раздел каталога
type Category struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    bool   `json:"is_active"`
}

func (c Category) String() string {
	return c.Title
}

// AbsoluteURL возвращает адрес страницы категории
func (c Category) AbsoluteURL() string {
	return "/category/" + c.Slug + "/"
}

func (c Category) ImageURL() string {
	return MediaURL + c.Image
}

// Item представляет товар каталога.
// DiscountPrice невалиден (Valid == false), если скидки нет.
type Item struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	CategoryID    int64               `json:"category_id"`
	Label         string              `json:"label"`
	Slug          string              `json:"slug"`
	StockNo       string              `json:"stock_no"`
	Description   string              `json:"description"`
	Image         string              `json:"image"`
	IsActive      bool                `json:"is_active"`
}

func (i Item) String() string {
	return i.Title
}

func (i Item) AbsoluteURL() string {
	return "/product/" + i.Slug + "/"
}

func (i Item) AddToCartURL() string {
	return "/add-to-cart/" + i.Slug + "/"
}

func (i Item) RemoveFromCartURL() string {
	return "/remove-from-cart/" + i.Slug + "/"
}

func (i Item) ImageURL() string {
	return MediaURL + i.Image
}

// Slide — баннер слайдера на главной странице
type Slide struct {
	ID       int64  `json:"id"`
	Caption1 string `json:"caption1"`
	Caption2 string `json:"caption2"`
	Link     string `json:"link"`
	Image    string `json:"image"`
	IsActive bool   `json:"is_active"`
}

func (s Slide) String() string {
	return s.Caption1 + " - " + s.Caption2
}

func (s Slide) ImageURL() string {
	return MediaURL + s.Image
}
