package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/cart"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.err
}

type fakeCatalogService struct {
	items []models.Item
	page  *service.CategoryPage
	html  string
	err   error
}

func (f *fakeCatalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	return f.items, f.err
}

func (f *fakeCatalogService) GetItem(ctx context.Context, slug string) (*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, item := range f.items {
		if item.Slug == slug {
			return &item, nil
		}
	}
	return nil, fmt.Errorf("fake: %w", storage.ErrItemNotFound)
}

func (f *fakeCatalogService) CategoryItems(ctx context.Context, slug string) (*service.CategoryPage, error) {
	return f.page, f.err
}

func (f *fakeCatalogService) SlidesFragment(ctx context.Context) (string, error) {
	return f.html, f.err
}

func (f *fakeCatalogService) CategoriesFragment(ctx context.Context) (string, error) {
	return f.html, f.err
}

// fakeCartService запоминает, с какой идентичностью его вызвали
type fakeCartService struct {
	summary  *service.CartSummary
	order    *service.OrderSummary
	action   service.CartAction
	err      error
	identity models.Identity
	slug     string
}

func (f *fakeCartService) Summary(ctx context.Context, identity models.Identity) (*service.CartSummary, error) {
	f.identity = identity
	return f.summary, f.err
}

func (f *fakeCartService) OrderSummary(ctx context.Context, userID int64) (*service.OrderSummary, error) {
	return f.order, f.err
}

func (f *fakeCartService) AddToCart(ctx context.Context, userID int64, slug string) (service.CartAction, error) {
	f.slug = slug
	return f.action, f.err
}

func (f *fakeCartService) RemoveFromCart(ctx context.Context, userID int64, slug string) error {
	f.slug = slug
	return f.err
}

func (f *fakeCartService) RemoveSingleItem(ctx context.Context, userID int64, slug string) (service.CartAction, error) {
	f.slug = slug
	return f.action, f.err
}

type fakeCheckoutService struct {
	redirect string
	receipt  *service.Receipt
	err      error
	form     service.CheckoutForm
	method   string
}

func (f *fakeCheckoutService) Checkout(ctx context.Context, userID int64, form service.CheckoutForm) (string, error) {
	f.form = form
	return f.redirect, f.err
}

func (f *fakeCheckoutService) Pay(ctx context.Context, userID int64, method, chargeID string) (*service.Receipt, error) {
	f.method = method
	return f.receipt, f.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newRequest собирает запрос с URL-параметрами chi и, если userID > 0, с пользователем в контексте
func newRequest(method, target, body string, userID int64, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID > 0 {
		ctx = context.WithValue(ctx, jwtmiddleware.UserIDKey, userID)
	}
	return req.WithContext(ctx)
}

func TestAuthHandler_Success(t *testing.T) {
	handler := handlers.AuthHandler(newTestLogger(), &fakeAuthService{token: "test-token"})

	req := newRequest("POST", "/api/auth", `{"username": "alice", "password": "password123"}`, 0, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected status 200 OK")

	var resp handlers.AuthResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "Response decoding should succeed")
	assert.Equal(t, "test-token", resp.Token, "Returned token should match fake token")
	assert.Equal(t, "alice", resp.Username)
}

func TestAuthHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		svc  *fakeAuthService
		want int
	}{
		{"invalid json", `{"username": "alice", "password":`, &fakeAuthService{}, http.StatusBadRequest},
		{"short password", `{"username": "alice", "password": "short"}`, &fakeAuthService{}, http.StatusBadRequest},
		{"username with spaces", `{"username": "al ice", "password": "password123"}`, &fakeAuthService{}, http.StatusBadRequest},
		{"wrong password", `{"username": "alice", "password": "password123"}`, &fakeAuthService{err: fmt.Errorf("op: %w", service.ErrInvalidCredentials)}, http.StatusUnauthorized},
		{"storage failure", `{"username": "alice", "password": "password123"}`, &fakeAuthService{err: assert.AnError}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.AuthHandler(newTestLogger(), tt.svc)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest("POST", "/api/auth", tt.body, 0, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestItemHandler(t *testing.T) {
	svc := &fakeCatalogService{items: []models.Item{{ID: 1, Title: "Shirt", Slug: "shirt", Price: decimal.NewFromInt(100)}}}
	handler := handlers.ItemHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/items/shirt", "", 0, map[string]string{"slug": "shirt"}))
	assert.Equal(t, http.StatusOK, rr.Code)

	var item models.Item
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&item))
	assert.Equal(t, "Shirt", item.Title)
	assert.True(t, decimal.NewFromInt(100).Equal(item.Price))
	assert.False(t, item.DiscountPrice.Valid, "Missing discount should decode as null")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/items/nope", "", 0, map[string]string{"slug": "nope"}))
	assert.Equal(t, http.StatusNotFound, rr.Code, "Unknown item should be 404")
}

func TestCategoryHandler_NotFound(t *testing.T) {
	svc := &fakeCatalogService{err: fmt.Errorf("wrapped: %w", storage.ErrCategoryNotFound)}
	handler := handlers.CategoryHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/categories/none", "", 0, map[string]string{"slug": "none"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSlidesFragmentHandler(t *testing.T) {
	svc := &fakeCatalogService{html: `<div class="item-slick1"></div>`}
	handler := handlers.SlidesFragmentHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/fragments/slides", "", 0, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `<div class="item-slick1"></div>`, rr.Body.String())

	svc.err = assert.AnError
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/fragments/slides", "", 0, nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCartSummaryHandler_IdentityFromContext(t *testing.T) {
	svc := &fakeCartService{summary: &service.CartSummary{Preview: cart.EmptyPreview}}
	handler := handlers.CartSummaryHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/cart", "", 0, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, svc.identity.IsAnonymous(), "Request without token should be anonymous")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/cart", "", 5, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	id, ok := svc.identity.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
}

func TestCartFragmentHandler(t *testing.T) {
	svc := &fakeCartService{summary: &service.CartSummary{Preview: cart.EmptyPreview}}
	handler := handlers.CartFragmentHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/fragments/cart", "", 0, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Empty", rr.Body.String())

	svc.summary = &service.CartSummary{Preview: cart.CartPreview{Lines: []cart.PreviewLine{
		{ImageURL: "/media/shirt.png", Title: "Shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
	}}}
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/fragments/cart", "", 1, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "2 x $100.00")
}

func TestAddToCartHandler(t *testing.T) {
	svc := &fakeCartService{action: service.ActionQuantityUpdated}
	handler := handlers.AddToCartHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/cart/shirt", "", 1, map[string]string{"slug": "shirt"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "shirt", svc.slug)

	var resp handlers.MessageResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "This item quantity was updated.", resp.Message)
}

func TestAddToCartHandler_MissingUserOrSlug(t *testing.T) {
	handler := handlers.AddToCartHandler(newTestLogger(), &fakeCartService{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/cart/shirt", "", 0, map[string]string{"slug": "shirt"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected Unauthorized when userID is missing")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/cart/", "", 1, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected Bad Request when slug is missing")
}

func TestRemoveHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no active order", service.ErrNoActiveOrder, http.StatusNotFound},
		{"not in cart", service.ErrItemNotInCart, http.StatusBadRequest},
		{"unknown item", storage.ErrItemNotFound, http.StatusNotFound},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCartService{err: fmt.Errorf("op: %w", tt.err)}
			params := map[string]string{"slug": "shirt"}

			rr := httptest.NewRecorder()
			handlers.RemoveFromCartHandler(newTestLogger(), svc).
				ServeHTTP(rr, newRequest("DELETE", "/api/cart/shirt", "", 1, params))
			assert.Equal(t, tt.want, rr.Code)

			rr = httptest.NewRecorder()
			handlers.RemoveSingleItemHandler(newTestLogger(), svc).
				ServeHTTP(rr, newRequest("DELETE", "/api/cart/shirt/single", "", 1, params))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestOrderSummaryHandler(t *testing.T) {
	svc := &fakeCartService{order: &service.OrderSummary{OrderID: 3, Total: decimal.RequireFromString("250.00")}}
	handler := handlers.OrderSummaryHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("GET", "/api/order-summary", "", 1, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp service.OrderSummary
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(3), resp.OrderID)
	assert.True(t, decimal.NewFromInt(250).Equal(resp.Total))
}

const checkoutBody = `{
	"street_address": "1 Main St",
	"apartment_address": "Apt 2",
	"country": "US",
	"zip": "12345",
	"same_shipping_address": true,
	"save_info": true,
	"payment_option": "S"
}`

func TestCheckoutHandler_Success(t *testing.T) {
	svc := &fakeCheckoutService{redirect: "/payment/stripe/"}
	handler := handlers.CheckoutHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/checkout", checkoutBody, 1, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CheckoutResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "/payment/stripe/", resp.RedirectURL)
	assert.Equal(t, "US", svc.form.Country)
	assert.True(t, svc.form.SaveInfo, "save_info should reach the service")
}

func TestCheckoutHandler_Rejects(t *testing.T) {
	badCountry := strings.Replace(checkoutBody, `"US"`, `"USA"`, 1)
	missingZip := strings.Replace(checkoutBody, `"12345"`, `""`, 1)

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad country", badCountry, nil, http.StatusBadRequest},
		{"missing zip", missingZip, nil, http.StatusBadRequest},
		{"invalid option", checkoutBody, service.ErrInvalidPaymentOption, http.StatusBadRequest},
		{"no order", checkoutBody, service.ErrNoActiveOrder, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.CheckoutHandler(newTestLogger(), &fakeCheckoutService{err: tt.err})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest("POST", "/api/checkout", tt.body, 1, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestPaymentHandler(t *testing.T) {
	svc := &fakeCheckoutService{receipt: &service.Receipt{OrderID: 7, RefCode: "abcdefghij0123456789", Amount: decimal.NewFromInt(250)}}
	handler := handlers.PaymentHandler(newTestLogger(), svc)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/payment/stripe", `{"charge_id": "ch_1"}`, 1, map[string]string{"method": "stripe"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "stripe", svc.method)

	var resp handlers.PaymentResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Your order was successful!", resp.Message)
	assert.Equal(t, "abcdefghij0123456789", resp.Receipt.RefCode)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/payment/stripe", `{}`, 1, map[string]string{"method": "stripe"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Missing charge id should fail validation")

	svc.err = service.ErrEmptyCart
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest("POST", "/api/payment/paypal", `{"charge_id": "ch_2"}`, 1, map[string]string{"method": "paypal"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
