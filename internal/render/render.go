// Package render отрисовывает html-фрагменты витрины: слайдер, блок категорий и превью корзины.
package render

import (
	"html/template"
	"io"

	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
)

// EmptyCart — текст превью, когда корзины нет
const EmptyCart = "Empty"

var fragments = template.Must(template.New("fragments").Parse(`
{{- define "slides" -}}
{{- range . -}}
<div class="item-slick1 item2-slick1" style="background-image: url({{.ImageURL}});">
<div class="wrap-content-slide1 sizefull flex-col-c-m p-l-15 p-r-15 p-t-150 p-b-170">
<span class="caption1-slide1 m-text1 t-center animated visible-false m-b-15" data-appear="rollIn">{{.Caption1}}</span>
<h2 class="caption2-slide1 xl-text1 t-center animated visible-false m-b-37" data-appear="lightSpeedIn">{{.Caption2}}</h2>
<div class="wrap-btn-slide1 w-size1 animated visible-false" data-appear="slideInUp"><a href="{{.Link}}" class="flex-c-m size2 bo-rad-23 s-text2 bgwhite hov1 trans-0-4">Shop Now</a></div></div></div>
{{- end -}}
{{- end -}}

{{- define "categories" -}}
<div class="col-sm-10 col-md-8 col-lg-4 m-l-r-auto">
{{- range . -}}
<div class="block1 hov-img-zoom pos-relative m-b-30"><img src="{{.ImageURL}}" alt="IMG-BENNER"><div class="block1-wrapbtn w-size2"><a href="{{.AbsoluteURL}}" class="flex-c-m size2 m-text2 bg3 hov1 trans-0-4">{{.Title}}</a></div></div>
{{- end -}}
</div>
{{- end -}}

{{- define "cart" -}}
{{- if .Empty -}}Empty{{- else -}}
{{- range .Lines -}}
<li class="header-cart-item">
<div class="header-cart-item-img"><img src="{{.ImageURL}}" alt="IMG"></div>
<div class="header-cart-item-txt">
<a href="#" class="header-cart-item-name">{{.Title}}</a>
<span class="header-cart-item-info">{{.Quantity}} x ${{.UnitPrice.StringFixed 2}}</span>
</div>
</li>
{{- end -}}
{{- end -}}
{{- end -}}
`))

// Slides пишет слайдер главной страницы
func Slides(w io.Writer, slides []models.Slide) error {
	return fragments.ExecuteTemplate(w, "slides", slides)
}

// Categories пишет блок категорий
func Categories(w io.Writer, categories []models.Category) error {
	return fragments.ExecuteTemplate(w, "categories", categories)
}

// CartPreview пишет выпадающий список корзины; для пустого превью — EmptyCart
func CartPreview(w io.Writer, preview cart.CartPreview) error {
	return fragments.ExecuteTemplate(w, "cart", preview)
}
